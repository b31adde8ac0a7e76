package webui

import (
	"fmt"
	"io/fs"
)

const (
	// DefaultPort is the port the server binds when none is configured.
	DefaultPort = 3030
	// DefaultHost binds to loopback only; the relay is a local bridge.
	DefaultHost = "127.0.0.1"
	// DefaultTitle is used by the index page when the static dir has none.
	DefaultTitle = "Web UI"
	// DefaultStaticDir is the on-disk directory served at /.
	DefaultStaticDir = "./static"

	// StreamPath is the websocket endpoint, one connection per session.
	StreamPath = "/ws"
	// FallbackPath is the stateless one-shot event endpoint.
	FallbackPath = "/api/event"
)

// Config holds server settings. Zero value is not usable; start from
// DefaultConfig and chain the With* methods.
type Config struct {
	Port      int
	Host      string
	Title     string
	StaticDir string

	// StaticFS, when set, is served instead of StaticDir. Lets callers embed
	// their UI assets with go:embed.
	StaticFS fs.FS
}

func DefaultConfig() Config {
	return Config{
		Port:      DefaultPort,
		Host:      DefaultHost,
		Title:     DefaultTitle,
		StaticDir: DefaultStaticDir,
	}
}

func (c Config) WithPort(port int) Config {
	c.Port = port
	return c
}

func (c Config) WithHost(host string) Config {
	c.Host = host
	return c
}

func (c Config) WithTitle(title string) Config {
	c.Title = title
	return c
}

func (c Config) WithStaticDir(dir string) Config {
	c.StaticDir = dir
	return c
}

func (c Config) WithStaticFS(fsys fs.FS) Config {
	c.StaticFS = fsys
	return c
}

// Addr returns the host:port pair the HTTP server binds.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
