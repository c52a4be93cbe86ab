package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"voiceclone/internal/errors"
	"voiceclone/internal/fishaudio"
	"voiceclone/internal/service"
)

const (
	defaultModelTitle   = "My model title"
	speechFilename      = "tts_output.wav"
	speechRelayBufBytes = 32 * 1024
)

// VoiceHandler exposes voice cloning and synthesis.
type VoiceHandler struct {
	svc    service.VoiceService
	logger *zap.Logger
}

// NewVoiceHandler creates a voice handler.
func NewVoiceHandler(svc service.VoiceService, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{svc: svc, logger: logger}
}

// SpeechRequest may arrive as query parameters, a JSON body or a form body.
type SpeechRequest struct {
	Text        string `query:"text" json:"text" form:"text" validate:"required"`
	ReferenceID string `query:"reference_id" json:"reference_id" form:"reference_id" validate:"required"`
	Model       string `query:"ttsModel" json:"ttsModel" form:"ttsModel"`
}

// ListModels godoc
// @Summary List the caller's voice models
// @Tags Voice
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "model id to title"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /clone-tts/list-models [get]
func (h *VoiceHandler) ListModels(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	models, err := h.svc.ListModels(c.Request().Context(), identity.Username)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, models)
}

// CreateModel godoc
// @Summary Clone a voice from an audio sample
// @Description Costs one credit unless the caller is an admin. The credit is returned if the upstream call fails before accepting the sample.
// @Tags Voice
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param voice formData file true "Voice sample"
// @Param title formData string false "Model title" default(My model title)
// @Param description formData string false "Model description"
// @Param enhance_audio_quality formData boolean false "Enhance audio quality" default(true)
// @Success 200 {object} object "upstream model document"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /clone-tts/create-model [post]
func (h *VoiceHandler) CreateModel(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("voice")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Detail: "voice file is required",
			Code:   "VALIDATION_ERROR",
		})
	}

	enhance := true
	if err := echo.FormFieldBinder(c).Bool("enhance_audio_quality", &enhance).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Detail: "enhance_audio_quality must be a boolean",
			Code:   "VALIDATION_ERROR",
		})
	}

	title := c.FormValue("title")
	if title == "" {
		title = defaultModelTitle
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(err)
	}
	defer file.Close()

	result, err := h.svc.CreateModel(c.Request().Context(), identity.Username, service.VoiceSample{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Content:     file,
	}, service.ModelOptions{
		Title:               title,
		Description:         c.FormValue("description"),
		EnhanceAudioQuality: enhance,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSONBlob(http.StatusOK, result)
}

// TextToSpeech godoc
// @Summary Synthesize speech with a cloned voice
// @Description Costs one credit unless the caller is an admin. Audio is streamed as it arrives from upstream.
// @Tags Voice
// @Accept json
// @Produce audio/wav
// @Security BearerAuth
// @Param text query string true "Text to speak"
// @Param reference_id query string true "Voice model id"
// @Param ttsModel query string false "Synthesis model" Enums(speech-1.5, speech-1.6, agent-x0) default(agent-x0)
// @Success 200 {file} binary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /clone-tts/text-to-speech [post]
func (h *VoiceHandler) TextToSpeech(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req SpeechRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Detail: "invalid query parameters",
			Code:   "INVALID_REQUEST",
		})
	}
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Detail: "invalid request body",
			Code:   "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	speech, err := h.svc.TextToSpeech(c.Request().Context(), identity.Username, service.SpeechInput{
		Text:        req.Text,
		ReferenceID: req.ReferenceID,
		Variant:     req.Model,
	})
	if err != nil {
		return respondError(err)
	}
	defer speech.Body.Close()

	return h.relay(c, speech)
}

// relay copies upstream audio to the client, flushing after every chunk.
func (h *VoiceHandler) relay(c echo.Context, speech *fishaudio.Speech) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, speech.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, "attachment; filename="+speechFilename)
	res.WriteHeader(http.StatusOK)

	buf := make([]byte, speechRelayBufBytes)
	for {
		n, readErr := speech.Body.Read(buf)
		if n > 0 {
			if _, err := res.Write(buf[:n]); err != nil {
				h.logger.Warn("client went away during speech stream", zap.Error(err))
				return nil
			}
			res.Flush()
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			// Headers are already sent; the truncated body is all the client gets.
			h.logger.Error("speech stream interrupted", zap.Error(readErr))
			return nil
		}
	}
}
