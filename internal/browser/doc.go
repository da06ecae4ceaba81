// Package browser locates the chromedriver executable that workers use for
// browser automation and describes how to launch it.
//
// Drivers are expected under <driverDir>/chromedriver-<platform>/chromedriver,
// where platform is the Chrome for Testing name for the host (linux64,
// mac-x64, mac-arm64). PATH is consulted when the directory has no driver.
package browser
