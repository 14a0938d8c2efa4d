// Package server is the thin HTTP layer: it collects text, hands it to
// the orchestrator, and streams the resulting WAV back.
package server

import (
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"voxclone/internal/pkg/voxclone/samples"
	"voxclone/internal/pkg/voxclone/synth"
)

type Server struct {
	app   *fiber.App
	synth *synth.Synthesizer
}

func New(s *synth.Synthesizer) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "voxclone",
		DisableStartupMessage: true,
	})

	srv := &Server{app: app, synth: s}
	app.Get("/", srv.index)
	app.Get("/api/samples", srv.listSamples)
	app.Post("/api/samples/refresh", srv.refreshSamples)
	app.Post("/api/synthesize", srv.synthesize)
	return srv
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

func (s *Server) synthesize(c *fiber.Ctx) error {
	var req synthesizeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}

	out, err := s.synth.Synthesize(req.Text)
	if err != nil {
		return mapError(err)
	}

	// The WAV encoder needs a seekable writer, so go through a temp
	// file rather than the response body.
	tmp, err := os.CreateTemp("", "voxclone-*.wav")
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := out.SaveWAV(tmpPath); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	log.Info().Int("bytes", len(data)).Float64("duration_sec", out.Duration()).Msg("Synthesis request served")
	c.Set(fiber.HeaderContentType, "audio/wav")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="speech.wav"`)
	return c.Send(data)
}

func (s *Server) listSamples(c *fiber.Ctx) error {
	pool, err := s.synth.Samples()
	if err != nil {
		return mapError(err)
	}
	return c.JSON(pool)
}

func (s *Server) refreshSamples(c *fiber.Ctx) error {
	pool, err := s.synth.RefreshSamples()
	if err != nil {
		return mapError(err)
	}
	return c.JSON(pool)
}

func mapError(err error) error {
	var synthErr *synth.SynthesisError
	switch {
	case errors.Is(err, samples.ErrNoSamplesAvailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.As(err, &synthErr):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>voxclone</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 2rem auto; }
textarea { width: 100%; height: 8rem; }
</style>
</head>
<body>
<h1>voxclone</h1>
<p>Type text below; it will be read in the cloned voice.</p>
<textarea id="text" placeholder="Enter text..."></textarea>
<p><button id="go">Synthesize</button> <span id="status"></span></p>
<audio id="player" controls style="display:none"></audio>
<script>
document.getElementById('go').onclick = async () => {
  const status = document.getElementById('status');
  status.textContent = 'working...';
  const resp = await fetch('/api/synthesize', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({text: document.getElementById('text').value})
  });
  if (!resp.ok) { status.textContent = await resp.text(); return; }
  const blob = await resp.blob();
  const player = document.getElementById('player');
  player.src = URL.createObjectURL(blob);
  player.style.display = 'block';
  player.play();
  status.textContent = '';
};
</script>
</body>
</html>`

func (s *Server) index(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexHTML)
}
