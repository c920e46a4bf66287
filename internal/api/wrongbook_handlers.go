package api

import (
	"net/http"

	apperrors "github.com/lexiboost/lexiboost/internal/errors"
	"github.com/lexiboost/lexiboost/internal/logger"
)

const maxImportSize = 5 << 20 // 5 MiB

// handleImportWrongbook accepts a multipart CSV upload whose first column
// lists words to add to the user's wrongbook.
func (s *Server) handleImportWrongbook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	user, err := s.Users.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if user == nil {
		handleError(w, r, apperrors.NewNotFoundError("user", id))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, apperrors.NewBadRequestError("missing CSV upload under field \"file\""))
		return
	}
	defer file.Close()

	log.Info("importing wrongbook CSV: user_id=%d filename=%s size=%d", id, header.Filename, header.Size)

	result, err := s.Importer.ImportCSV(r.Context(), id, file)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
