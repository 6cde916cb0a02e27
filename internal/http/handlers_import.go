package http

import (
	"net/http"
)

// handleImport feeds an uploaded CSV through the line parser. Lines that fail
// are reported and do not stop the rest of the file.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	text, err := readImportText(w, r, s.maxImportBytes)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result := s.svc.ImportCSV(r.Context(), text)
	if result.Imported > 0 {
		s.ledgerChanged()
	}
	writeJSON(w, r, http.StatusOK, result)
}
