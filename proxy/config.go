package proxy

// Config is the proxy server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// UpstreamURL is the upstream API base URL (e.g., "https://api2.cursor.sh")
	UpstreamURL string
}
