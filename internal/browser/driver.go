package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"dashtrack/pkg/logging"
)

const subsystem = "Browser"

const (
	// DefaultImplicitWait is how long element lookups wait before failing
	DefaultImplicitWait = 5 * time.Second
	// DefaultPageLoadTimeout bounds a single page load
	DefaultPageLoadTimeout = 120 * time.Second
)

var (
	// ErrUnsupportedPlatform is returned for OS/architecture pairs without a
	// chromedriver build.
	ErrUnsupportedPlatform = errors.New("unsupported platform for chromedriver")

	// ErrDriverNotFound is returned when no chromedriver executable exists
	// in the driver directory or on PATH.
	ErrDriverNotFound = errors.New("chromedriver executable not found")
)

// Variables to allow mocking in tests
var (
	lookPath = exec.LookPath
	goos     = runtime.GOOS
	goarch   = runtime.GOARCH
)

// Chrome for Testing platform names by GOOS/GOARCH
var platforms = map[string]string{
	"darwin/arm64": "mac-arm64",
	"darwin/amd64": "mac-x64",
	"linux/amd64":  "linux64",
}

var (
	defaultArgs    = []string{"--headless"}
	noHeadlessArgs = []string{"--no-headless"}
	incognitoArgs  = []string{"--incognito"}
	serverArgs     = []string{
		"--headless",
		"--no-sandbox",
		"start-maximized",
		"disable-infobars",
		"--disable-extensions",
	}
)

// Options select where drivers live and how the browser is launched.
type Options struct {
	// DriverDir holds chromedriver-<platform>/chromedriver
	DriverDir string
	// CacheDir holds per-platform browser profiles. Empty disables profiles.
	CacheDir string

	Headless   bool
	Incognito  bool
	ServerMode bool
}

// Driver describes a chromedriver executable and how to launch the browser
// it controls.
type Driver struct {
	Path     string
	Platform string
	Args     []string

	// UserDataDir is the browser profile directory, if any
	UserDataDir string

	ImplicitWait    time.Duration
	PageLoadTimeout time.Duration
}

// Resolver locates chromedriver once and hands the result to every caller.
// It is safe for concurrent use.
type Resolver struct {
	opts    Options
	resolve func() (Driver, error)
}

// NewResolver creates a resolver for the given options.
func NewResolver(opts Options) *Resolver {
	r := &Resolver{opts: opts}
	r.resolve = sync.OnceValues(r.locate)
	return r
}

// Resolve returns the driver descriptor. The lookup runs on the first call;
// later calls return the same result.
func (r *Resolver) Resolve(ctx context.Context) (Driver, error) {
	if err := ctx.Err(); err != nil {
		return Driver{}, err
	}
	driver, err := r.resolve()
	if err != nil {
		return Driver{}, err
	}
	// Callers may append to Args
	driver.Args = append([]string(nil), driver.Args...)
	return driver, nil
}

func (r *Resolver) locate() (Driver, error) {
	platform, err := Platform(goos, goarch)
	if err != nil {
		return Driver{}, err
	}

	path, err := r.executable(platform)
	if err != nil {
		return Driver{}, err
	}

	driver := Driver{
		Path:            path,
		Platform:        platform,
		Args:            Args(r.opts),
		ImplicitWait:    DefaultImplicitWait,
		PageLoadTimeout: DefaultPageLoadTimeout,
	}
	if r.opts.CacheDir != "" {
		driver.UserDataDir = filepath.Join(r.opts.CacheDir, "chrome_driver_"+platform)
	}

	logging.Info(subsystem, "Using chromedriver %s (%s)", driver.Path, platform)
	return driver, nil
}

func (r *Resolver) executable(platform string) (string, error) {
	if r.opts.DriverDir != "" {
		candidate := filepath.Join(r.opts.DriverDir, "chromedriver-"+platform, "chromedriver")
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		logging.Debug(subsystem, "No chromedriver at %s, falling back to PATH", candidate)
	}

	path, err := lookPath("chromedriver")
	if err != nil {
		return "", fmt.Errorf("%w (driver dir %q): %v", ErrDriverNotFound, r.opts.DriverDir, err)
	}
	return path, nil
}

// Platform maps a GOOS/GOARCH pair to a Chrome for Testing platform name.
func Platform(system, arch string) (string, error) {
	platform, ok := platforms[system+"/"+arch]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, system, arch)
	}
	return platform, nil
}

// Args returns the browser arguments for the given options. Server mode
// implies headless.
func Args(opts Options) []string {
	var args []string
	switch {
	case opts.ServerMode:
		args = append(args, serverArgs...)
	case opts.Headless:
		args = append(args, defaultArgs...)
	default:
		args = append(args, noHeadlessArgs...)
	}
	if opts.Incognito {
		args = append(args, incognitoArgs...)
	}
	return args
}
