package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/ingest"
	"github.com/ginjaninja78/taxease/internal/reference"
	"github.com/ginjaninja78/taxease/internal/report"
	"github.com/ginjaninja78/taxease/internal/types"
)

// ErrorResponse is the JSON body of a rejected request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// TablesResponse lists the reference tables in use.
type TablesResponse struct {
	Jurisdictions  []types.Jurisdiction        `json:"jurisdictions"`
	Localities     []reference.LocalityEntry   `json:"localities"`
	Taxability     []reference.TaxabilityEntry `json:"taxability"`
	DefaultTaxable bool                        `json:"default_taxable"`
}

// httpError pairs a client-facing error with its status code.
type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string {
	return e.err.Error()
}

func newHTTPError(status int, format string, args ...any) *httpError {
	return &httpError{status: status, err: fmt.Errorf(format, args...)}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) index(c *gin.Context) {
	page := fmt.Sprintf(indexPage,
		strings.Join(ingest.AllowedExtensions, ","),
		strings.Join(ingest.AllowedExtensions, ", "),
		s.cfg.MaxUploadBytes>>20,
	)
	c.Data(http.StatusOK, report.FormatHTML.ContentType(), []byte(page))
}

func (s *Server) tables(c *gin.Context) {
	t := s.analyzer.Tables()
	if t == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "no reference tables configured"})
		return
	}
	c.JSON(http.StatusOK, TablesResponse{
		Jurisdictions:  t.Jurisdictions(),
		Localities:     t.Localities(),
		Taxability:     t.Taxability(),
		DefaultTaxable: reference.DefaultTaxable,
	})
}

// upload answers with an HTML report unless the client asks for JSON via
// the Accept header, or for any report format via ?format=.
func (s *Server) upload(c *gin.Context) {
	format, err := responseFormat(c)
	if err != nil {
		s.fail(c, report.FormatJSON, &httpError{status: http.StatusBadRequest, err: err})
		return
	}
	s.handleUpload(c, format)
}

func (s *Server) analyze(c *gin.Context) {
	s.handleUpload(c, report.FormatJSON)
}

func (s *Server) handleUpload(c *gin.Context, format report.Format) {
	in, herr := s.receive(c)
	if herr != nil {
		s.fail(c, format, herr)
		return
	}

	var buf bytes.Buffer
	status := http.StatusOK
	if in.Tabular() {
		res := s.analyzer.Run(in.Dataset)
		if !res.Success {
			status = http.StatusUnprocessableEntity
		}
		err := report.Render(&buf, format, res)
		if err != nil {
			s.fail(c, format, newHTTPError(http.StatusInternalServerError, "failed to render report: %w", err))
			return
		}
	} else {
		if err := report.RenderText(&buf, format, in.Text); err != nil {
			s.fail(c, format, newHTTPError(http.StatusInternalServerError, "failed to render report: %w", err))
			return
		}
	}

	c.Data(status, format.ContentType(), buf.Bytes())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// receive reads the multipart "file" field and loads it with the adapter
// matching its extension.
func (s *Server) receive(c *gin.Context) (*ingest.Input, *httpError) {
	limit := s.cfg.MaxUploadBytes
	if c.Request.ContentLength > limit {
		return nil, tooLarge(limit)
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, tooLarge(limit)
		}
		return nil, newHTTPError(http.StatusBadRequest, "no file uploaded: expected multipart field %q", "file")
	}
	if _, err := ingest.KindOf(fh.Filename); err != nil {
		return nil, &httpError{status: http.StatusBadRequest, err: err}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, newHTTPError(http.StatusInternalServerError, "failed to open upload: %w", err)
	}
	defer f.Close()

	in, err := ingest.LoadReader(f, fh.Filename, s.ingest)
	if err != nil {
		return nil, &httpError{status: http.StatusUnprocessableEntity, err: err}
	}
	return in, nil
}

func tooLarge(limit int64) *httpError {
	return newHTTPError(http.StatusRequestEntityTooLarge, "file too large: limit is %d MiB", limit>>20)
}

func responseFormat(c *gin.Context) (report.Format, error) {
	if q := c.Query("format"); q != "" {
		return report.ParseFormat(q)
	}
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		return report.FormatJSON, nil
	}
	return report.FormatHTML, nil
}

// fail logs a rejected request and answers with an error page for HTML
// clients and an ErrorResponse otherwise.
func (s *Server) fail(c *gin.Context, format report.Format, herr *httpError) {
	s.logger.Warn("request rejected",
		zap.String("request_id", requestID(c)),
		zap.Int("status", herr.status),
		zap.Error(herr.err),
	)

	if format == report.FormatHTML {
		var buf bytes.Buffer
		md := "# Upload failed\n\n" + herr.Error() + "\n\n[Back to upload](/)\n"
		if err := report.WriteHTML(&buf, "Upload failed", md); err == nil {
			c.Data(herr.status, format.ContentType(), buf.Bytes())
			return
		}
	}
	c.JSON(herr.status, ErrorResponse{Success: false, Error: herr.Error()})
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>TaxEase Analyzer</title>
<style>body{font-family:system-ui,sans-serif;margin:3rem auto;max-width:40rem;padding:0 1rem;color:#1f2933}
form{border:1px dashed #9aa5b1;padding:2rem;border-radius:.5rem}
button{margin-top:1rem;padding:.5rem 1.5rem}</style>
</head>
<body>
<h1>TaxEase Analyzer</h1>
<p>Upload a sales export to see where you have economic nexus, what you owe and when to file.</p>
<form action="/upload" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept="%s" required>
<p><small>Accepted: %s. Maximum size %d MiB.</small></p>
<button type="submit">Analyze</button>
</form>
</body>
</html>
`
