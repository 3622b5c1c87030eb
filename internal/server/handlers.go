package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/cadre/internal/filter"
	"github.com/amishk599/cadre/internal/model"
)

// maxLimit caps the page length a client may request.
const maxLimit = 100

const (
	codeNotFound   = "not_found"
	codeBadRequest = "bad_request"
	codeInternal   = "internal_error"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Retry   bool   `json:"retry,omitempty"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: code, Message: msg})
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{
		Error:   codeInternal,
		Message: "something went wrong",
		Retry:   true,
	})
}

// fail maps a board error to a response. Only not-found is surfaced; anything
// else is logged and hidden behind the generic body.
func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, model.ErrNotFound) {
		writeError(c, http.StatusNotFound, codeNotFound, err.Error())
		return
	}
	s.logger.Error("request failed",
		"path", c.Request.URL.Path,
		"error", err,
		"request_id", c.GetString(requestIDKey),
	)
	abortInternal(c)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listJobs(c *gin.Context) {
	offset, err := intParam(c, "offset", 0)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeBadRequest, "offset must be an integer")
		return
	}
	limit, err := intParam(c, "limit", s.pageSize)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
		return
	}
	limit = max(1, min(limit, maxLimit))

	page, err := s.board.Jobs(c.Request.Context(), filter.ParseQuery(c.Request.URL.Query()), max(offset, 0), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.board.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) search(c *gin.Context) {
	res, err := s.board.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) listCompanies(c *gin.Context) {
	companies, err := s.board.Companies(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": nonNil(companies)})
}

func (s *Server) getCompany(c *gin.Context) {
	d, err := s.board.CompanyBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) listInvestors(c *gin.Context) {
	investors, err := s.board.Investors(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investors": nonNil(investors)})
}

func (s *Server) getInvestor(c *gin.Context) {
	d, err := s.board.InvestorBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) filterOptions(c *gin.Context) {
	opts, err := s.board.FilterOptions(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (s *Server) probe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": s.board.Probe(c.Request.Context())})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
