// Package preview serves a read-only HTML rendition of the wiki.
package preview

const (
	// DefaultPort is the default HTTP port for the preview server.
	DefaultPort = 8080
)

// ServerConfig holds configuration for the preview server.
type ServerConfig struct {
	Port  int    // HTTP port to listen on (WIKI_PREVIEW_PORT, default 8080)
	Title string // Site title shown in the page header
}

// WithDefaults returns a copy with unset fields filled in.
func (c *ServerConfig) WithDefaults() *ServerConfig {
	out := *c
	if out.Port <= 0 {
		out.Port = DefaultPort
	}
	if out.Title == "" {
		out.Title = "Wiki"
	}
	return &out
}
