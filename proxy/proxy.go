// Package proxy provides a transparent intercepting proxy that captures
// editor API traffic for extraction and deduplicated storage.
package proxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/capture"
	"github.com/riddlemeS4m/cursor-prompt-scraper/proxy/header"
	"github.com/riddlemeS4m/cursor-prompt-scraper/proxy/worker"
)

// Proxy is a transparent proxy between the editor and its upstream API.
// It forwards every request unmodified and enqueues chat-endpoint request
// bodies for async extraction via its worker pool.
type Proxy struct {
	config        Config
	session       *capture.Session
	workerPool    *worker.Pool
	logger        *zap.Logger
	httpClient    *http.Client
	server        *fiber.App
	headerHandler *header.Handler
}

// New creates a new Proxy. The worker pool is injected to handle async
// processing of captured requests.
func New(config Config, sess *capture.Session, pool *worker.Pool, logger *zap.Logger) (*Proxy, error) {
	if config.UpstreamURL == "" {
		return nil, errors.New("upstream URL is required")
	}
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if pool == nil {
		return nil, errors.New("worker pool is required")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	// Add compression middleware to handle responses
	app.Use(compress.New())

	p := &Proxy{
		config:        config,
		session:       sess,
		workerPool:    pool,
		logger:        logger,
		server:        app,
		headerHandler: header.NewHandler(),
		httpClient: &http.Client{
			// Chat completions can be slow, especially long streams
			Timeout: 5 * time.Minute,
		},
	}

	// Register transparent proxy route - forwards any path to upstream
	app.All("/*", p.handleProxy)

	return p, nil
}

// Run starts the proxy server on the given listening address
func (p *Proxy) Run() error {
	p.logger.Info("starting proxy server",
		zap.String("listen", p.config.ListenAddr),
		zap.String("upstream", p.config.UpstreamURL),
		zap.String("session_id", p.session.ID),
	)

	return p.server.Listen(p.config.ListenAddr)
}

// RunWithListener starts the proxy server using the provided listener.
func (p *Proxy) RunWithListener(listener net.Listener) error {
	p.logger.Info("starting proxy server",
		zap.String("listen", listener.Addr().String()),
		zap.String("upstream", p.config.UpstreamURL),
		zap.String("session_id", p.session.ID),
	)

	return p.server.Listener(listener)
}

// Close shuts down the proxy server. The worker pool is owned by the caller
// and drained separately so captures survive the HTTP shutdown.
func (p *Proxy) Close() error {
	return p.server.Shutdown()
}

// handleProxy is a transparent proxy handler that forwards requests to
// upstream and captures chat-endpoint request bodies on the way through.
func (p *Proxy) handleProxy(c *fiber.Ctx) error {
	path := c.Path()
	method := c.Method()
	body := c.Body()

	if method == fiber.MethodPost && len(body) > 0 && capture.IsChatEndpoint(path) {
		p.captureRequest(c, path, body)
	}

	return p.forward(c, path, method, body)
}

// captureRequest assigns the request number synchronously, so numbering
// follows arrival order even though processing is async, then enqueues a
// copy of the body for the worker pool.
func (p *Proxy) captureRequest(c *fiber.Ctx, path string, body []byte) {
	num := p.session.Next()

	// fasthttp reuses the body buffer after the handler returns.
	raw := make([]byte, len(body))
	copy(raw, body)

	p.workerPool.Enqueue(worker.Job{
		Session: p.session,
		Num:     num,
		Req: capture.Request{
			Endpoint:  path,
			Host:      string(c.Request().Host()),
			Timestamp: time.Now(),
			Raw:       raw,
		},
	})

	p.logger.Debug("captured chat request",
		zap.Int("request_number", num),
		zap.String("endpoint", path),
		zap.Int("body_bytes", len(raw)),
	)
}

// forward relays the request to the upstream API and the response back to
// the editor. Event-stream responses are piped through chunk by chunk; all
// other responses are read fully and sent at once.
func (p *Proxy) forward(c *fiber.Ctx, path, method string, body []byte) error {
	upstreamURL := p.config.UpstreamURL + path
	if qs := string(c.Context().QueryArgs().QueryString()); qs != "" {
		upstreamURL += "?" + qs
	}

	var reqBody io.Reader
	if len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}

	// Use context.Background() instead of c.Context() because fasthttp
	// recycles its RequestCtx after the handler returns, but a streaming
	// response body is consumed asynchronously and needs the upstream
	// connection to remain open.
	httpReq, err := http.NewRequestWithContext(context.Background(), method, upstreamURL, reqBody)
	if err != nil {
		p.logger.Error("failed to create upstream request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	p.headerHandler.SetUpstreamRequestHeaders(c, httpReq)

	p.logger.Debug("forwarding request to upstream",
		zap.String("method", method),
		zap.String("url", upstreamURL),
	)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.Error("upstream request failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream request failed"})
	}

	p.headerHandler.SetClientResponseHeaders(c, httpResp)
	c.Status(httpResp.StatusCode)

	if isStreamingResponse(httpResp) {
		return p.relayStream(c, httpResp)
	}

	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		p.logger.Error("failed to read upstream response", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to read upstream response"})
	}

	return c.Send(respBody)
}

// relayStream pipes the upstream body to the editor without interpreting it.
//
// io.Pipe is used instead of SetBodyStreamWriter: with io.Pipe, pw.Write
// blocks until fasthttp's writeBodyChunked consumes the data and flushes to
// the TCP socket, giving direct backpressure and true per-chunk streaming.
// SetBodyStreamWriter buffers chunks internally before any byte reaches the
// editor.
func (p *Proxy) relayStream(c *fiber.Ctx, httpResp *http.Response) error {
	pr, pw := io.Pipe()

	go func() {
		defer httpResp.Body.Close()
		defer pw.Close()

		if _, err := io.Copy(pw, httpResp.Body); err != nil {
			p.logger.Error("error relaying stream", zap.Error(err))
		}
	}()

	// Unknown size (-1) triggers chunked transfer encoding in fasthttp.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// isStreamingResponse reports whether the upstream response should be piped
// through rather than buffered.
func isStreamingResponse(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "text/event-stream") {
		return true
	}
	// Connect/gRPC style streams used by the editor's unified chat.
	if strings.HasPrefix(ct, "application/connect+") || strings.HasPrefix(ct, "application/grpc") {
		return true
	}
	for _, te := range resp.TransferEncoding {
		if te == "chunked" {
			return true
		}
	}
	return false
}
