package bootstrap

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"gopkg.in/ini.v1"
)

// VersionSection is the INI section name §6 specifies version.ini/install.ini
// carry their manifest-filename key under.
const VersionSection = "VERSION"

// IndexKey is the key within VersionSection naming the manifest blob file.
const IndexKey = "INDEX"

// newBootstrapClient returns an http.Client backed by a disk cache, used
// only for the one-shot version.ini/install.ini and manifest-blob fetches
// (never for ranged chunk GETs — see client.go's doc comment for why that
// would be wrong). cacheDir is typically a subdirectory of the resolved
// output directory so repeated runs against an unchanged manifest skip the
// network entirely.
func newBootstrapClient(cacheDir string, userAgent string, timeout time.Duration) *http.Client {
	transport := httpcache.NewTransport(diskcache.New(cacheDir))
	transport.Transport = &userAgentTransport{
		ua:   userAgent,
		next: http.DefaultTransport,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

type userAgentTransport struct {
	ua   string
	next http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.ua)
	return t.next.RoundTrip(req)
}

// FetchManifestFilename downloads versionURL (version.ini or install.ini),
// parses it as INI, and returns the manifest blob's filename from
// [VERSION]/INDEX, per spec.md §6: "INI text, section [VERSION], key INDEX
// → manifest filename."
func FetchManifestFilename(client *http.Client, versionURL string) (string, error) {
	resp, err := client.Get(versionURL)
	if err != nil {
		return "", fmt.Errorf("bootstrap: fetch %s: %w", versionURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bootstrap: fetch %s: status %d", versionURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("bootstrap: read %s: %w", versionURL, err)
	}

	cfg, err := ini.Load(body)
	if err != nil {
		return "", fmt.Errorf("bootstrap: parse %s: %w", versionURL, err)
	}

	section, err := cfg.GetSection(VersionSection)
	if err != nil {
		return "", fmt.Errorf("bootstrap: %s missing [%s] section: %w", versionURL, VersionSection, err)
	}
	key, err := section.GetKey(IndexKey)
	if err != nil {
		return "", fmt.Errorf("bootstrap: %s missing %s key: %w", versionURL, IndexKey, err)
	}

	name := key.String()
	if name == "" {
		return "", fmt.Errorf("bootstrap: %s has empty %s value", versionURL, IndexKey)
	}
	return name, nil
}

// NewBootstrapClient is the exported constructor cmd/fast-dl wires up; kept
// separate from FetchManifestFilename so the manifest-blob GET can reuse the
// same cached client.
func NewBootstrapClient(cacheDir, userAgent string, timeout time.Duration) *http.Client {
	return newBootstrapClient(cacheDir, userAgent, timeout)
}

// FetchManifestBlob downloads the binary manifest (git-index-v2 blob) named
// by FetchManifestFilename's result, from patchBaseURL/<manifestFilename>.
func FetchManifestBlob(client *http.Client, patchBaseURL, manifestFilename string) ([]byte, error) {
	url := patchBaseURL + "/" + manifestFilename
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: fetch manifest %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bootstrap: fetch manifest %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: read manifest %s: %w", url, err)
	}
	return body, nil
}
