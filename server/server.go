// Package server exposes the transcription pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/gopal-prakash-codes/ai-diagnosis/clients"
	"github.com/gopal-prakash-codes/ai-diagnosis/intake"
	"github.com/gopal-prakash-codes/ai-diagnosis/orchestrator"
)

const maxUploadSize = 100 << 20

// Processor runs one uploaded recording through the pipeline.
type Processor interface {
	Process(ctx context.Context, r io.Reader, name string) (*orchestrator.Response, error)
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewRouter builds the gin engine serving the transcription API.
func NewRouter(p Processor) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/transcribe", transcribe(p))
	return r
}

func transcribe(p Processor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

		fh, err := c.FormFile("audio")
		if err != nil {
			writeError(c, http.StatusBadRequest, "missing or invalid 'audio' field: "+err.Error())
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeError(c, http.StatusBadRequest, "cannot read upload: "+err.Error())
			return
		}
		defer f.Close()

		// a dropped client does not abort the sources; their timeouts bound the run
		resp, err := p.Process(context.WithoutCancel(c.Request.Context()), f, fh.Filename)
		log := logrus.WithField("rid", c.GetString(requestIDKey))
		if err != nil {
			var ve *intake.ValidationError
			switch {
			case errors.As(err, &ve):
				writeError(c, http.StatusBadRequest, ve.Error())
			case resp != nil:
				log.WithError(err).Warn("Transcription failed")
				c.JSON(failureStatus(err), resp)
			default:
				log.WithError(err).Error("Transcription failed")
				writeError(c, http.StatusInternalServerError, err.Error())
			}
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// failureStatus maps a both-sources failure to 429 when either source was
// throttled, and to 500 otherwise.
func failureStatus(err error) int {
	var fe *orchestrator.FailureError
	if errors.As(err, &fe) {
		if clients.HasKind(fe.Translator, clients.KindRateLimited) || clients.HasKind(fe.Diarizer, clients.KindRateLimited) {
			return http.StatusTooManyRequests
		}
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorBody{Success: false, Error: msg})
}

// Serve runs the router on addr until ctx is cancelled, then drains
// in-flight requests for up to grace.
func Serve(ctx context.Context, addr string, h http.Handler, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logrus.Info("Server shutdown complete")
	return nil
}
