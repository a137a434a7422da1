package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vocab-sprint/internal/app"
	"vocab-sprint/internal/domain"
)

// maxImageBytes bounds an uploaded answer sheet.
const maxImageBytes = 10 << 20

// SessionHandler exposes the play-session use cases over REST.
type SessionHandler struct {
	game *app.GameService
}

func NewSessionHandler(game *app.GameService) *SessionHandler {
	return &SessionHandler{game: game}
}

func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.start)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.abort)
		r.Post("/skip", h.skip)
		r.Post("/submit", h.submit)
	})
}

type startRequest struct {
	Difficulty string `json:"difficulty"`
}

func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, errBadRequest)
			return
		}
	}
	difficulty, err := domain.ParseDifficulty(body.Difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.game.Start(r.Context(), userFrom(r.Context()).ID, difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.game.Get(r.Context(), chi.URLParam(r, "id"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) skip(w http.ResponseWriter, r *http.Request) {
	snap, err := h.game.Skip(r.Context(), chi.URLParam(r, "id"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) abort(w http.ResponseWriter, r *http.Request) {
	if err := h.game.Abort(r.Context(), chi.URLParam(r, "id"), userFrom(r.Context()).ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) submit(w http.ResponseWriter, r *http.Request) {
	answer, err := decodeAnswer(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.game.Submit(r.Context(), chi.URLParam(r, "id"), userFrom(r.Context()).ID, answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type answerRequest struct {
	Text  string `json:"text"`
	Image *struct {
		Data     string `json:"data"`
		MimeType string `json:"mimeType"`
	} `json:"image"`
}

// decodeAnswer accepts either JSON with a base64 image (plain or data URL) or a
// multipart form with a "text" field and an "image" file.
func decodeAnswer(r *http.Request) (domain.Answer, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return decodeMultipartAnswer(r)
	}

	var body answerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 2*maxImageBytes)).Decode(&body); err != nil {
		return domain.Answer{}, errBadRequest
	}
	answer := domain.Answer{Text: body.Text}
	if body.Image != nil && body.Image.Data != "" {
		data, mimeType := body.Image.Data, body.Image.MimeType
		if rest, ok := strings.CutPrefix(data, "data:"); ok {
			header, payload, found := strings.Cut(rest, ",")
			if !found {
				return domain.Answer{}, fmt.Errorf("%w: bad data url", domain.ErrInvalidImage)
			}
			if mimeType == "" {
				mimeType = strings.TrimSuffix(header, ";base64")
			}
			data = payload
		}
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return domain.Answer{}, fmt.Errorf("%w: image is not base64", domain.ErrInvalidImage)
		}
		if len(raw) > maxImageBytes {
			return domain.Answer{}, fmt.Errorf("%w: image too large", domain.ErrInvalidImage)
		}
		answer.Image = &domain.Image{Data: raw, MimeType: mimeType}
	}
	return answer, nil
}

func decodeMultipartAnswer(r *http.Request) (domain.Answer, error) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return domain.Answer{}, errBadRequest
	}
	answer := domain.Answer{Text: r.FormValue("text")}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return answer, nil
	}
	if err != nil {
		return domain.Answer{}, errBadRequest
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return domain.Answer{}, errBadRequest
	}
	if len(raw) > maxImageBytes {
		return domain.Answer{}, fmt.Errorf("%w: image too large", domain.ErrInvalidImage)
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		// let the submitter sniff it
		mimeType = ""
	}
	answer.Image = &domain.Image{Data: raw, MimeType: mimeType}
	return answer, nil
}
