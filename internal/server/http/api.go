// Package httpapi exposes the same services as the gRPC server over JSON/HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/mobicure/internal/backup"
	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/scoring"
	"github.com/and161185/mobicure/internal/service"
	"github.com/and161185/mobicure/internal/tools"
	"github.com/and161185/mobicure/internal/vault"
)

const userIDKey = "userID"

type Handler struct {
	Auth  service.AuthService
	Vault service.VaultService
	Tools *service.ToolsService
}

// RequireSession aborts with 401 unless the request carries a valid bearer token.
func (h *Handler) RequireSession(c *gin.Context) {
	v := c.GetHeader("Authorization")
	if len(v) < 7 || !strings.EqualFold(v[:7], "bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no auth"})
		return
	}
	id, err := h.Auth.Verify(strings.TrimSpace(v[7:]))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Set(userIDKey, id)
	c.Next()
}

func userID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(userIDKey)
	id, _ := v.(uuid.UUID)
	return id
}

func fail(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidRecord),
		errors.Is(err, errs.ErrInvalidLength),
		errors.Is(err, errs.ErrInvalidJSON),
		errors.Is(err, errs.ErrInvalidSetting),
		errors.Is(err, errs.ErrInvalidEmail),
		errors.Is(err, tools.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, vault.ErrNotPersisted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// --- Session ---

func (h *Handler) SignIn(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
		Name  string `json:"name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tok, u, err := h.Auth.SignIn(c.Request.Context(), input.Email, input.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": tok.AccessToken, "expiresAt": tok.ExpiresAt, "user": u})
}

func (h *Handler) SignOut(c *gin.Context) {
	if err := h.Auth.SignOut(c.Request.Context(), userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// --- Vault ---

type recordInput struct {
	Kind    model.Kind      `json:"kind"`
	Title   string          `json:"title"`
	Payload json.RawMessage `json:"payload"`
}

func (h *Handler) ListRecords(c *gin.Context) {
	recs, err := h.Vault.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) AddRecord(c *gin.Context) {
	var input recordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := model.ParsePayload(input.Kind, input.Payload)
	if err != nil {
		fail(c, err)
		return
	}
	rec, err := h.Vault.Add(c.Request.Context(), userID(c), input.Kind, input.Title, p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	ctx := c.Request.Context()
	var input recordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cur, err := h.Vault.Get(ctx, userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	p, err := model.ParsePayload(cur.Kind, input.Payload)
	if err != nil {
		fail(c, err)
		return
	}
	rec, err := h.Vault.Update(ctx, userID(c), cur.ID, input.Title, p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	ok, err := h.Vault.Delete(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// --- Backup & settings ---

// ExportBackup serves the backup as a download.
func (h *Handler) ExportBackup(c *gin.Context) {
	b, err := h.Vault.Export(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	data, err := backup.Encode(b)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+backup.FileName+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handler) ClearAll(c *gin.Context) {
	if err := h.Vault.ClearAll(c.Request.Context(), userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetSettings(c *gin.Context) {
	st, err := h.Vault.Settings(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateSetting(c *gin.Context) {
	var input struct {
		Key   string `json:"key" binding:"required"`
		Value any    `json:"value"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.Vault.SetSetting(c.Request.Context(), userID(c), input.Key, input.Value)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.Vault.Dashboard(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// --- Tools ---

func (h *Handler) PasswordStrength(c *gin.Context) {
	var input struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st := h.Tools.ScorePassword(input.Password)
	c.JSON(http.StatusOK, gin.H{"score": st.Score, "band": st.Band(), "checks": st.Satisfied})
}

func (h *Handler) Risk(c *gin.Context) {
	var input scoring.RiskFactors
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r := h.Tools.ScoreRisk(input)
	c.JSON(http.StatusOK, gin.H{"riskScore": r.Score, "factors": r.Reasons, "level": scoring.RiskLevel(r.Score)})
}

func (h *Handler) GeneratePassword(c *gin.Context) {
	input := struct {
		Length         int  `json:"length"`
		IncludeSymbols bool `json:"includeSymbols"`
		IncludeNumbers bool `json:"includeNumbers"`
	}{IncludeSymbols: true, IncludeNumbers: true}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	pw, err := h.Tools.GeneratePassword(input.Length, input.IncludeSymbols, input.IncludeNumbers)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"password": pw})
}

func (h *Handler) FakeIdentity(c *gin.Context) {
	c.JSON(http.StatusOK, h.Tools.FakeIdentity())
}

func (h *Handler) MaskedEmail(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"email": h.Tools.MaskedEmail()})
}

func (h *Handler) CheckBreaches(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"breaches": h.Tools.CheckBreaches(input.Email)})
}

func (h *Handler) FormatJSON(c *gin.Context) {
	var input struct {
		Input string `json:"input"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Tools.FormatJSON(input.Input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"output": out})
}

func (h *Handler) QRCode(c *gin.Context) {
	var input struct {
		Text string `json:"text"`
		Size int    `json:"size"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.Tools.QRCode(input.Text, input.Size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}
