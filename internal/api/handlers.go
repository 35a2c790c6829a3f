package api

import (
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/common/errors"
	"resume-matcher/internal/common/logger"
	"resume-matcher/internal/models"
	"resume-matcher/internal/pipeline"
)

// multipartOverhead is the room left in the request body cap for the form
// boundaries and part headers around the file itself.
const multipartOverhead = 64 << 10

type matchResponse struct {
	Matches          []models.MatchResult     `json:"matches"`
	ThresholdRelaxed bool                     `json:"thresholdRelaxed,omitempty"`
	Candidate        *models.CandidateSummary `json:"candidate,omitempty"`
}

func (s *Server) health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": s.now().UnixMilli()})
	}
}

func (s *Server) resumeMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := logger.FromContext(ctx, s.logger)

		opts, err := parseOptions(c)
		if err != nil {
			s.writeError(c, err)
			return
		}

		maxBytes := s.cfg.MaxUploadBytes
		if maxBytes > 0 {
			if c.Request.ContentLength > maxBytes+multipartOverhead {
				s.writeError(c, errors.NewFileTooLargeError(maxBytes))
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
		}

		file, err := c.FormFile(resumeField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				s.writeError(c, errors.NewFileTooLargeError(maxBytes))
				return
			}
			s.writeError(c, errors.NewMissingFileError())
			return
		}
		if maxBytes > 0 && file.Size > maxBytes {
			s.writeError(c, errors.NewFileTooLargeError(maxBytes))
			return
		}

		contentType := file.Header.Get("Content-Type")
		log.Info("Resume received", map[string]interface{}{
			"fileName":    file.Filename,
			"contentType": contentType,
			"sizeKiB":     fmt.Sprintf("%.1f", float64(file.Size)/1024),
		})

		data, err := readUpload(file)
		if err != nil {
			s.writeError(c, errors.NewInternalError(err))
			return
		}

		res, err := s.matcher.Match(ctx, pipeline.Upload{
			Data:        data,
			FileName:    file.Filename,
			ContentType: contentType,
		}, opts)
		if err != nil {
			s.writeError(c, err)
			return
		}

		resp := matchResponse{Matches: res.Matches, ThresholdRelaxed: res.ThresholdRelaxed}
		if opts.Debug {
			candidate := res.Candidate
			resp.Candidate = &candidate
		}
		c.JSON(http.StatusOK, resp)
	}
}

// parseOptions reads limit, minScore and debug from the query string. An
// explicit limit below 1 becomes 1; the pipeline applies the upper bounds.
func parseOptions(c *gin.Context) (pipeline.Options, error) {
	var opts pipeline.Options

	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, errors.NewInvalidRequestError(fmt.Sprintf("limit must be an integer, got %q", raw))
		}
		opts.Limit = max(n, 1)
	}

	if raw := strings.TrimSpace(c.Query("minScore")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, errors.NewInvalidRequestError(fmt.Sprintf("minScore must be an integer, got %q", raw))
		}
		opts.MinScore = n
	}

	if raw, ok := c.GetQuery("debug"); ok {
		if raw == "" {
			opts.Debug = true
		} else {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return opts, errors.NewInvalidRequestError(fmt.Sprintf("debug must be a boolean, got %q", raw))
			}
			opts.Debug = b
		}
	}

	return opts, nil
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// writeError renders err as {error, code, details?}. Details only leave the
// server for extraction faults; everything else stays in the logs.
func (s *Server) writeError(c *gin.Context, err error) {
	stdErr := errors.AsStandardError(err)
	status := errors.HTTPStatus(stdErr)

	body := gin.H{"error": stdErr.Message, "code": stdErr.Code}
	fields := map[string]interface{}{}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	fields["code"] = string(stdErr.Code)
	fields["status"] = status
	if stdErr.Details != "" {
		fields["details"] = stdErr.Details
	}

	log := logger.FromContext(c.Request.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		log.Error("Resume match failed", fields)
		if stdErr.Code == errors.ErrCodeExtractionFailed && stdErr.Details != "" {
			body["details"] = stdErr.Details
		}
	} else {
		log.Warn("Resume match rejected", fields)
	}

	c.AbortWithStatusJSON(status, body)
}
