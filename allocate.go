package chromiumoxide

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DefaultLaunchTimeout bounds the wait for the browser to publish its
// debugger websocket url.
const DefaultLaunchTimeout = 20 * time.Second

// DefaultCloseTimeout bounds the graceful shutdown before the browser process
// is killed. Only the browser process itself is killed; other processes in
// its process group are not signalled.
const DefaultCloseTimeout = 5 * time.Second

// Launcher assembles the browser command line and spawns the process.
type Launcher struct {
	execPath string
	flags    map[string]interface{}
	env      []string

	extensions    []string
	disableDefaultFlags bool

	launchTimeout time.Duration
	closeTimeout  time.Duration

	combinedOutputWriter io.Writer

	browserOpts []BrowserOption
}

// LaunchOption configures the launcher.
type LaunchOption func(*Launcher)

// defaultFlags are always passed unless DisableDefaultFlags is set, after
// Puppeteer's default behavior.
var defaultFlags = map[string]interface{}{
	"no-first-run":             true,
	"no-default-browser-check": true,
	"disable-background-networking":          true,
	"disable-background-timer-throttling":    true,
	"disable-backgrounding-occluded-windows": true,
	"disable-breakpad":                       true,
	"disable-client-side-phishing-detection": true,
	"disable-default-apps":                   true,
	"disable-dev-shm-usage":                  true,
	"disable-hang-monitor":                   true,
	"disable-ipc-flooding-protection":        true,
	"disable-popup-blocking":                 true,
	"disable-prompt-on-repost":               true,
	"disable-renderer-backgrounding":         true,
	"disable-sync":                           true,
	"force-color-profile":                    "srgb",
	"metrics-recording-only":                 true,
	"enable-automation":                      true,
	"password-store":                         "basic",
	"use-mock-keychain":                      true,
}

func newLauncher(opts ...LaunchOption) *Launcher {
	l := &Launcher{
		flags:         map[string]interface{}{"headless": true},
		launchTimeout: DefaultLaunchTimeout,
		closeTimeout:  DefaultCloseTimeout,
	}
	for _, o := range opts {
		o(l)
	}
	if l.execPath == "" {
		l.execPath = findExecPath()
	}
	return l
}

// args assembles the browser argv from the configured flags. The returned
// dataDir is the user data directory in use; removeDir reports whether it is
// ephemeral and must be removed on close.
func (l *Launcher) args() (args []string, dataDir string, removeDir bool, err error) {
	flags := make(map[string]interface{}, len(l.flags)+len(defaultFlags))
	if !l.disableDefaultFlags {
		maps.Copy(flags, defaultFlags)
	}
	maps.Copy(flags, l.flags)

	if _, ok := flags["remote-debugging-port"]; !ok {
		flags["remote-debugging-port"] = "0"
	}
	if _, ok := flags["no-sandbox"]; !ok && os.Getuid() == 0 {
		// Chrome needs --no-sandbox when running as root, for example in
		// a Linux container.
		flags["no-sandbox"] = true
	}
	dataDir, ok := flags["user-data-dir"].(string)
	if !ok {
		dataDir, err = os.MkdirTemp("", "chromiumoxide-runner")
		if err != nil {
			return nil, "", false, err
		}
		flags["user-data-dir"] = dataDir
		removeDir = true
	}
	if len(l.extensions) > 0 {
		var paths []string
		for _, e := range l.extensions {
			abs, err := filepath.Abs(e)
			if err != nil {
				abs = e
			}
			paths = append(paths, abs)
		}
		flags["load-extension"] = joinComma(paths)
	}

	// Deterministic argv ordering keeps log output and tests stable.
	names := maps.Keys(flags)
	slices.Sort(names)
	for _, name := range names {
		switch value := flags[name].(type) {
		case string:
			args = append(args, fmt.Sprintf("--%s=%s", name, value))
		case bool:
			if value {
				args = append(args, fmt.Sprintf("--%s", name))
			}
		default:
			return nil, "", false, fmt.Errorf("invalid flag %q", name)
		}
	}

	// Force the first page to be blank, instead of the welcome page;
	// --no-first-run doesn't enforce that.
	args = append(args, "about:blank")
	return args, dataDir, removeDir, nil
}

func joinComma(parts []string) string {
	var buf bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(p)
	}
	return buf.String()
}

// Launch spawns a browser process, waits for its debugger websocket url, and
// connects to it.
func Launch(ctx context.Context, opts ...LaunchOption) (*Browser, error) {
	l := newLauncher(opts...)

	args, dataDir, removeDir, err := l.args()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, l.execPath, args...)
	if len(l.env) > 0 {
		cmd.Env = append(os.Environ(), l.env...)
	}

	// Chrome prints the debugger url on stderr.
	stderr, err := cmd.StderrPipe()
	if err != nil {
		if removeDir {
			os.RemoveAll(dataDir)
		}
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		if removeDir {
			os.RemoveAll(dataDir)
		}
		if _, lookErr := exec.LookPath(l.execPath); lookErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrExecutableNotFound, l.execPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	// Surface process exit; the url wait below and Browser.Close select on
	// this.
	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	var wsURL string
	urlErr := make(chan error, 1)
	go func() {
		var err error
		wsURL, err = readOutput(stderr, l.combinedOutputWriter)
		urlErr <- err
	}()
	select {
	case err = <-urlErr:
	case <-exited:
		err = fmt.Errorf("%w: process exited before url", ErrLaunchFailed)
	case <-time.After(l.launchTimeout):
		err = fmt.Errorf("%w: timeout waiting for url", ErrLaunchFailed)
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		kill(cmd)
		if removeDir {
			os.RemoveAll(dataDir)
		}
		return nil, err
	}

	browser, err := NewBrowser(ctx, wsURL, l.browserOpts...)
	if err != nil {
		kill(cmd)
		if removeDir {
			os.RemoveAll(dataDir)
		}
		return nil, err
	}
	browser.process = cmd.Process
	browser.processExit = exited
	browser.userDataDir = dataDir
	browser.removeDataDir = removeDir
	browser.closeTimeout = l.closeTimeout

	go func() {
		// If the connection dies outside a graceful Close, kill the
		// process at once; Close handles shutdown itself otherwise.
		<-browser.LostConnection
		select {
		case <-browser.closingGracefully:
		default:
			kill(cmd)
			if removeDir {
				os.RemoveAll(dataDir)
			}
		}
	}()
	return browser, nil
}

func kill(cmd *exec.Cmd) {
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
}

// readOutput grabs the websocket address from the browser's output,
// returning as soon as it is found. All read output is forwarded to forward,
// if non-nil.
func readOutput(rc io.ReadCloser, forward io.Writer) (wsURL string, _ error) {
	prefix := []byte("DevTools listening on")
	var accumulated bytes.Buffer
	bufr := bufio.NewReader(rc)
readLoop:
	for {
		line, err := bufr.ReadBytes('\n')
		if err != nil {
			return "", fmt.Errorf("%w:\n%s", ErrLaunchFailed, accumulated.Bytes())
		}
		if forward != nil {
			if _, err := forward.Write(line); err != nil {
				return "", err
			}
		}

		if bytes.HasPrefix(line, prefix) {
			line = line[len(prefix):]
			// use TrimSpace, to also remove \r on Windows
			line = bytes.TrimSpace(line)
			wsURL = string(line)
			break readLoop
		}
		accumulated.Write(line)
	}
	if forward == nil {
		// We don't need the process's output anymore.
		rc.Close()
	} else {
		// Copy the rest of the output in a separate goroutine, as we
		// need to return with the websocket URL.
		go io.Copy(forward, bufr)
	}
	return wsURL, nil
}

// findExecPath tries to find the browser binary somewhere on the current
// system. It performs a rather aggressive search, which is the same in all
// systems.
func findExecPath() string {
	for _, path := range [...]string{
		// Unix-like
		"headless_shell",
		"headless-shell",
		"chromium",
		"chromium-browser",
		"google-chrome",
		"google-chrome-stable",
		"google-chrome-beta",
		"google-chrome-unstable",
		"/usr/bin/google-chrome",

		// Windows
		"chrome",
		"chrome.exe", // in case PATHEXT is misconfigured
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		filepath.Join(os.Getenv("USERPROFILE"), `AppData\Local\Google\Chrome\Application\chrome.exe`),

		// Mac
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	} {
		found, err := exec.LookPath(path)
		if err == nil {
			return found
		}
	}
	// Fall back to something simple and sensible, to give a useful error
	// message.
	return "google-chrome"
}

// Flag is a generic command line option to pass a flag to the browser. If the
// value is a string, it is passed as --name=value; a true boolean is passed
// as --name.
func Flag(name string, value interface{}) LaunchOption {
	return func(l *Launcher) {
		l.flags[name] = value
	}
}

// ExecPath uses the given path to execute the browser. The path can be an
// absolute path to a binary, or just the name of the program to find via
// exec.LookPath.
func ExecPath(path string) LaunchOption {
	return func(l *Launcher) {
		if fullPath, _ := exec.LookPath(path); fullPath != "" {
			l.execPath = fullPath
		} else {
			l.execPath = path
		}
	}
}

// Headless toggles headless mode. It is on by default; Headless(false) opens
// a visible window.
func Headless(headless bool) LaunchOption {
	return func(l *Launcher) {
		l.flags["headless"] = headless
		if headless {
			// Like in Puppeteer.
			l.flags["hide-scrollbars"] = true
			l.flags["mute-audio"] = true
		}
	}
}

// NoSandbox disables the browser sandbox.
func NoSandbox(l *Launcher) {
	l.flags["no-sandbox"] = true
}

// DisableGPU disables the GPU process.
func DisableGPU(l *Launcher) {
	l.flags["disable-gpu"] = true
}

// WindowSize sets the initial window size.
func WindowSize(width, height int) LaunchOption {
	return Flag("window-size", fmt.Sprintf("%d,%d", width, height))
}

// Port sets the remote debugging port. The default of 0 lets the OS assign
// one.
func Port(port uint16) LaunchOption {
	return Flag("remote-debugging-port", strconv.Itoa(int(port)))
}

// UserDataDir sets the profile directory used by the browser. When not set,
// an ephemeral directory is created and removed on close.
func UserDataDir(dir string) LaunchOption {
	return Flag("user-data-dir", dir)
}

// ProxyServer sets the outbound proxy server.
func ProxyServer(proxy string) LaunchOption {
	return Flag("proxy-server", proxy)
}

// UserAgent sets the default User-Agent header.
func UserAgent(userAgent string) LaunchOption {
	return Flag("user-agent", userAgent)
}

// Extension adds an unpacked extension to load on startup.
func Extension(path string) LaunchOption {
	return func(l *Launcher) {
		l.extensions = append(l.extensions, path)
	}
}

// Env appends environment variables in the form NAME=value for the browser
// process. These are added to the environment of the current process.
func Env(vars ...string) LaunchOption {
	return func(l *Launcher) {
		l.env = append(l.env, vars...)
	}
}

// Args adds raw command line arguments, "--name=value" or "--name" style.
// Each one replaces a flag of the same name set earlier.
func Args(args ...string) LaunchOption {
	return func(l *Launcher) {
		for _, a := range args {
			for len(a) > 0 && a[0] == '-' {
				a = a[1:]
			}
			name, value := a, ""
			for i := 0; i < len(a); i++ {
				if a[i] == '=' {
					name, value = a[:i], a[i+1:]
					break
				}
			}
			if value == "" {
				l.flags[name] = true
			} else {
				l.flags[name] = value
			}
		}
	}
}

// DisableDefaultFlags drops the built-in flag set and passes only explicitly
// configured flags.
func DisableDefaultFlags(l *Launcher) {
	l.disableDefaultFlags = true
}

// LaunchTimeout bounds the wait for the debugger websocket url.
func LaunchTimeout(d time.Duration) LaunchOption {
	return func(l *Launcher) {
		l.launchTimeout = d
	}
}

// CloseTimeout bounds the graceful shutdown wait before the process is
// killed.
func CloseTimeout(d time.Duration) LaunchOption {
	return func(l *Launcher) {
		l.closeTimeout = d
	}
}

// CombinedOutput forwards the browser's stderr to w.
func CombinedOutput(w io.Writer) LaunchOption {
	return func(l *Launcher) {
		l.combinedOutputWriter = w
	}
}

// WithBrowserOptions passes browser options through to the Browser created
// by Launch.
func WithBrowserOptions(opts ...BrowserOption) LaunchOption {
	return func(l *Launcher) {
		l.browserOpts = append(l.browserOpts, opts...)
	}
}
