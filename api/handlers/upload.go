package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lawchain/lawchain-api/api"
	"github.com/lawchain/lawchain-api/chain"
	"github.com/lawchain/lawchain-api/config"
	"github.com/lawchain/lawchain-api/models"
	"github.com/lawchain/lawchain-api/storage"
)

// multipartMemoryLimit bounds how much of the form is buffered in memory
// before spilling to a temp file.
const multipartMemoryLimit = 32 << 20

// Upload exported for testing purposes
type Upload struct {
	Uploads *storage.Uploader
	Bridge  *chain.Bridge
	Hub     *Hub
}

type uploadMetadata struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	UploadedBy  string `json:"uploadedBy"`
}

type uploadResponse struct {
	Success  bool           `json:"success"`
	CID      string         `json:"cid"`
	URL      string         `json:"url"`
	Key      string         `json:"key"`
	Metadata uploadMetadata `json:"metadata"`
}

// UploadHandler stores a document and, when a case id accompanies it,
// records the cid on the case. Recording failure triggers a compensating
// delete so the bucket holds no reference the chain does not know about.
func (h Upload) UploadHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	owner := r.Header.Get("x-user-address")
	if owner == "" {
		config.ErrorStatus("missing owner address", http.StatusBadRequest, w, storage.ErrMissingOwner)
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}
	// reclaims any temp spill file on success and failure paths alike
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			zap.S().Warnw("failed to clean multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("no file in request", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := h.Uploads.Upload(ctx, file, header, owner)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			config.ErrorStatus("file too large", http.StatusRequestEntityTooLarge, w, err)
		case errors.Is(err, storage.ErrMissingOwner):
			config.ErrorStatus("missing owner address", http.StatusBadRequest, w, err)
		default:
			config.ErrorStatus("failed to store file", http.StatusInternalServerError, w, err)
		}
		return
	}

	if rawCaseID := r.FormValue("caseId"); rawCaseID != "" {
		caseID, err := strconv.ParseInt(rawCaseID, 10, 64)
		if err != nil {
			config.ErrorStatus("invalid case id", http.StatusBadRequest, w, err)
			return
		}
		doc := models.Document{
			Name:         header.Filename,
			CID:          res.CID,
			UploadedBy:   owner,
			UploadDate:   time.Now().UTC().Format(time.RFC3339),
			DocumentType: r.FormValue("documentType"),
		}
		if err := h.Bridge.RecordDocument(ctx, caseID, doc); err != nil {
			// the upload succeeded but the case record did not; remove the
			// object rather than leaving an orphan behind
			if delErr := h.Uploads.Delete(ctx, res.Key); delErr != nil {
				zap.S().Errorw("compensating delete failed, janitor will collect",
					"key", res.Key,
					"error", delErr,
				)
			}
			if errors.Is(err, chain.ErrCaseNotFound) {
				config.ErrorStatus("case not found", http.StatusNotFound, w, err)
				return
			}
			config.ErrorStatus("failed to record document", http.StatusInternalServerError, w, err)
			return
		}
		h.Hub.Broadcast(CaseEvent{
			Type:   EventDocumentRecorded,
			CaseID: caseID,
			Action: "Document Uploaded: " + header.Filename,
			By:     owner,
		})
	}

	resp := uploadResponse{
		Success: true,
		CID:     res.CID,
		URL:     res.PublicURL,
		Key:     res.Key,
		Metadata: uploadMetadata{
			Name:        header.Filename,
			Size:        res.Size,
			ContentType: header.Header.Get("Content-Type"),
			UploadedBy:  owner,
		},
	}
	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// FileRedirectHandler bounces the browser to the public IPFS gateway for a
// cid.
func (h Upload) FileRedirectHandler(w http.ResponseWriter, r *http.Request) {
	cid := mux.Vars(r)["cid"]
	if cid == "" {
		config.ErrorStatus("missing cid", http.StatusBadRequest, w, errors.New("cid required"))
		return
	}
	http.Redirect(w, r, h.Uploads.GatewayURL(cid), http.StatusFound)
}
