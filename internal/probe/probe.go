package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/safe-acid/tornet/internal/service"
)

// Default probe parameters.
const (
	// DefaultEndpoint is the IP-echo service queried for the public
	// address. It answers with the caller's IP as a bare text body.
	DefaultEndpoint = "https://api.ipify.org"

	// DefaultConnectivityEndpoint is used for the baseline "is there
	// internet at all" check at startup. Plain HTTP keeps the check
	// cheap; we only care that something answers.
	DefaultConnectivityEndpoint = "http://www.google.com"

	// DefaultProxyAddress is the Tor daemon's standard SOCKS5 port on
	// loopback. 127.0.0.1 rather than localhost avoids IPv6 resolution
	// surprises on some systems.
	DefaultProxyAddress = "127.0.0.1:9050"

	// DefaultDirectTimeout bounds the direct probe. Clearnet lookups
	// are fast; anything slower than this is effectively down.
	DefaultDirectTimeout = 10 * time.Second

	// DefaultProxyTimeout bounds the proxied probe. It is longer than
	// the direct timeout because Tor may still be negotiating a circuit
	// when the probe fires.
	DefaultProxyTimeout = 15 * time.Second

	// connectivityTimeout bounds the baseline connectivity check.
	connectivityTimeout = 5 * time.Second

	// maxResponseSize caps how much of the echo response we read.
	// An IP address fits in well under 64 bytes; anything bigger is
	// not the service we think it is.
	maxResponseSize = 64
)

// Result is one probe observation: the observed public IP and whether
// it was fetched through the Tor proxy or directly.
type Result struct {
	// IP is the observed public address.
	IP string

	// ViaProxy is true when the lookup went through the SOCKS5 proxy.
	ViaProxy bool
}

// Prober determines the current public IP address.
//
// Design decision: the proxied and direct paths are separate methods
// rather than one method with a flag because they are different oracles.
// The proxied lookup verifies that Tor routes traffic; the direct lookup
// only verifies the host is online. CurrentIP picks between them based
// on whether a tor process exists in the process table, because the
// service can be enabled in the supervisor while no process is running
// (and vice versa during restart windows).
type Prober struct {
	endpoint             string
	connectivityEndpoint string
	proxyAddress         string
	directTimeout        time.Duration
	proxyTimeout         time.Duration

	// dialer is the SOCKS5 dialer, created once at construction.
	dialer proxy.Dialer

	// process detection collaborators, see process.go.
	processName string
	pgrep       pgrepRunner
	procRoot    string

	logger *slog.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithEndpoint overrides the IP-echo endpoint (tests point this at a
// local httptest server).
func WithEndpoint(url string) ProberOption {
	return func(p *Prober) {
		p.endpoint = url
	}
}

// WithConnectivityEndpoint overrides the baseline connectivity endpoint.
func WithConnectivityEndpoint(url string) ProberOption {
	return func(p *Prober) {
		p.connectivityEndpoint = url
	}
}

// WithProxyAddress sets the SOCKS5 proxy address ("host:port").
func WithProxyAddress(addr string) ProberOption {
	return func(p *Prober) {
		p.proxyAddress = addr
	}
}

// WithTimeouts overrides the direct and proxied probe timeouts.
func WithTimeouts(direct, viaProxy time.Duration) ProberOption {
	return func(p *Prober) {
		p.directTimeout = direct
		p.proxyTimeout = viaProxy
	}
}

// WithProcessName sets the process name matched in the process table.
func WithProcessName(name string) ProberOption {
	return func(p *Prober) {
		p.processName = name
	}
}

// WithPgrep substitutes the pgrep executor.
func WithPgrep(r pgrepRunner) ProberOption {
	return func(p *Prober) {
		p.pgrep = r
	}
}

// WithProcRoot points process scanning at an alternative proc
// filesystem root (tests use a fixture directory).
func WithProcRoot(root string) ProberOption {
	return func(p *Prober) {
		p.procRoot = root
	}
}

// WithProberLogger sets a custom logger. Defaults to slog.Default().
func WithProberLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a Prober with the given options.
// It validates the proxy address and builds the SOCKS5 dialer up front;
// no network traffic happens until a probe method is called.
func NewProber(opts ...ProberOption) (*Prober, error) {
	p := &Prober{
		endpoint:             DefaultEndpoint,
		connectivityEndpoint: DefaultConnectivityEndpoint,
		proxyAddress:         DefaultProxyAddress,
		directTimeout:        DefaultDirectTimeout,
		proxyTimeout:         DefaultProxyTimeout,
		processName:          "tor",
		pgrep:                service.ExecRunner{},
		procRoot:             "/proc",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	host, port, err := net.SplitHostPort(p.proxyAddress)
	if err != nil || host == "" || port == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProxyAddress, p.proxyAddress)
	}

	// nil auth: Tor's SOCKS port does not require authentication.
	dialer, err := proxy.SOCKS5("tcp", p.proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	p.dialer = dialer

	return p, nil
}

// DirectIP fetches the public IP without the proxy.
// Failures are ordinary errors for the caller to log as warnings; the
// host simply has no usable connectivity right now.
func (p *Prober) DirectIP(ctx context.Context) (string, error) {
	client := &http.Client{Timeout: p.directTimeout}
	return p.fetchIP(ctx, client)
}

// ProxyIP fetches the public IP through the Tor SOCKS5 proxy.
// A successful result proves Tor is routing traffic under the current
// exit policy; an error usually means no circuit is established yet.
func (p *Prober) ProxyIP(ctx context.Context) (string, error) {
	transport := &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return p.dialer.Dial(network, addr)
		},
		// One probe per call: no point keeping circuits idle.
		MaxIdleConns:      1,
		IdleConnTimeout:   10 * time.Second,
		DisableKeepAlives: true,
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   p.proxyTimeout,
	}
	return p.fetchIP(ctx, client)
}

// CurrentIP fetches the public IP, routing through Tor when the tor
// process is present in the process table and directly otherwise.
func (p *Prober) CurrentIP(ctx context.Context) (Result, error) {
	if p.ProcessRunning(ctx) {
		ip, err := p.ProxyIP(ctx)
		return Result{IP: ip, ViaProxy: true}, err
	}
	ip, err := p.DirectIP(ctx)
	return Result{IP: ip, ViaProxy: false}, err
}

// CheckConnectivity verifies baseline internet access with a short
// direct request. It returns ErrNoConnectivity on failure so the CLI
// can map it to its stable exit code.
func (p *Prober) CheckConnectivity(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectivityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.connectivityEndpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoConnectivity, err)
	}
	client := &http.Client{Timeout: connectivityTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoConnectivity, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure
	// Any HTTP answer at all proves connectivity; the status is irrelevant.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	return nil
}

// fetchIP performs the IP-echo request with the given client and
// validates that the body is a parseable IP address.
func (p *Prober) fetchIP(ctx context.Context, client *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, p.endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", err
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("response from %s is not an IP address: %q", p.endpoint, ip)
	}
	return ip, nil
}
