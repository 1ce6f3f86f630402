package simapi

import (
	"net/http"

	"github.com/go-chi/render"
)

type HttpErrResponse struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	ErrorText      string `json:"error"`
}

func (e *HttpErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func (s *SimApiServer) httpErrUnexpected(err error) render.Renderer {
	return &HttpErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		ErrorText:      "Internal Server Error",
	}
}

func (s *SimApiServer) httpErrInvalidRequest(err error) render.Renderer {
	return &HttpErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		ErrorText:      "Invalid Request",
	}
}
