// Package grpcserver exposes the mobicure Dashboard gRPC API handlers.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/scoring"
	"github.com/and161185/mobicure/internal/service"
	"github.com/and161185/mobicure/internal/tools"
	"github.com/and161185/mobicure/internal/vault"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "mobicure.v1.Dashboard"

// Server wires services into gRPC handlers.
type Server struct {
	auth  service.AuthService
	vault service.VaultService
	tools *service.ToolsService
}

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, v service.VaultService, t *service.ToolsService) *Server {
	return &Server{auth: auth, vault: v, tools: t}
}

// Register attaches the Dashboard service to r.
func (s *Server) Register(r grpc.ServiceRegistrar) {
	r.RegisterService(&serviceDesc, s)
}

// --- Session ---

type signInRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type signInResponse struct {
	AccessToken string     `json:"accessToken"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	User        model.User `json:"user"`
}

// SignIn starts a simulated session and returns a bearer token.
func (s *Server) SignIn(ctx context.Context, in *structpb.Struct) (any, error) {
	var req signInRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	tok, u, err := s.auth.SignIn(ctx, req.Email, req.Name)
	if err != nil {
		return nil, toStatus("sign in", err)
	}
	return signInResponse{AccessToken: tok.AccessToken, ExpiresAt: tok.ExpiresAt, User: u}, nil
}

// SignOut ends the session of the caller.
func (s *Server) SignOut(ctx context.Context, _ *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if err := s.auth.SignOut(ctx, userID); err != nil {
		return nil, toStatus("sign out", err)
	}
	return nil, nil
}

// --- Vault ---

type recordRequest struct {
	ID      string          `json:"id"`
	Kind    model.Kind      `json:"kind"`
	Title   string          `json:"title"`
	Payload json.RawMessage `json:"payload"`
}

type recordResponse struct {
	Record model.Record `json:"record"`
}

// ListRecords returns all records in insertion order.
func (s *Server) ListRecords(ctx context.Context, _ *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	recs, err := s.vault.List(ctx, userID)
	if err != nil {
		return nil, toStatus("list", err)
	}
	return map[string]any{"records": recs}, nil
}

// AddRecord validates and stores a new record.
func (s *Server) AddRecord(ctx context.Context, in *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	var req recordRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	p, err := model.ParsePayload(req.Kind, req.Payload)
	if err != nil {
		return nil, toStatus("add", err)
	}
	rec, err := s.vault.Add(ctx, userID, req.Kind, req.Title, p)
	if err != nil {
		return nil, toStatus("add", err)
	}
	return recordResponse{Record: rec}, nil
}

// UpdateRecord replaces title and payload of a record. The kind is taken from the stored record.
func (s *Server) UpdateRecord(ctx context.Context, in *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	var req recordRequest
	if err := FromStruct(in, &req); err != nil || req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "bad id")
	}
	if req.Kind == "" {
		cur, err := s.vault.Get(ctx, userID, req.ID)
		if err != nil {
			return nil, toStatus("update", err)
		}
		req.Kind = cur.Kind
	}
	p, err := model.ParsePayload(req.Kind, req.Payload)
	if err != nil {
		return nil, toStatus("update", err)
	}
	rec, err := s.vault.Update(ctx, userID, req.ID, req.Title, p)
	if err != nil {
		return nil, toStatus("update", err)
	}
	return recordResponse{Record: rec}, nil
}

// DeleteRecord removes a record; deleted is false when the id was unknown.
func (s *Server) DeleteRecord(ctx context.Context, in *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	var req recordRequest
	if err := FromStruct(in, &req); err != nil || req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "bad id")
	}
	ok, err := s.vault.Delete(ctx, userID, req.ID)
	if err != nil {
		return nil, toStatus("delete", err)
	}
	return map[string]bool{"deleted": ok}, nil
}

// --- Backup & settings ---

// ExportBackup returns the full backup document.
func (s *Server) ExportBackup(ctx context.Context, _ *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	b, err := s.vault.Export(ctx, userID)
	if err != nil {
		return nil, toStatus("export", err)
	}
	return b, nil
}

// ClearAll wipes every slot.
func (s *Server) ClearAll(ctx context.Context, _ *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if err := s.vault.ClearAll(ctx, userID); err != nil {
		return nil, toStatus("clear", err)
	}
	return nil, nil
}

// GetSettings returns the dashboard preferences.
func (s *Server) GetSettings(ctx context.Context, _ *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	st, err := s.vault.Settings(ctx, userID)
	if err != nil {
		return nil, toStatus("settings", err)
	}
	return st, nil
}

// UpdateSetting changes one preference: {"key": "darkMode", "value": false}.
func (s *Server) UpdateSetting(ctx context.Context, in *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	var req struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	}
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	st, err := s.vault.SetSetting(ctx, userID, req.Key, req.Value)
	if err != nil {
		return nil, toStatus("update setting", err)
	}
	return st, nil
}

// GetDashboard returns the vault size and risk estimate.
func (s *Server) GetDashboard(ctx context.Context, _ *structpb.Struct) (any, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	d, err := s.vault.Dashboard(ctx, userID)
	if err != nil {
		return nil, toStatus("dashboard", err)
	}
	return d, nil
}

// --- Tools ---

// ScorePassword rates {"password": ...}.
func (s *Server) ScorePassword(_ context.Context, in *structpb.Struct) (any, error) {
	var req struct {
		Password string `json:"password"`
	}
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	st := s.tools.ScorePassword(req.Password)
	return map[string]any{"score": st.Score, "band": st.Band(), "checks": st.Satisfied}, nil
}

// ScoreRisk rates the privacy questionnaire.
func (s *Server) ScoreRisk(_ context.Context, in *structpb.Struct) (any, error) {
	var req scoring.RiskFactors
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	r := s.tools.ScoreRisk(req)
	return map[string]any{"riskScore": r.Score, "factors": r.Reasons, "level": scoring.RiskLevel(r.Score)}, nil
}

// GeneratePassword accepts {length, includeSymbols, includeNumbers}; both flags default to true.
func (s *Server) GeneratePassword(_ context.Context, in *structpb.Struct) (any, error) {
	req := struct {
		Length         int  `json:"length"`
		IncludeSymbols bool `json:"includeSymbols"`
		IncludeNumbers bool `json:"includeNumbers"`
	}{IncludeSymbols: true, IncludeNumbers: true}
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	pw, err := s.tools.GeneratePassword(req.Length, req.IncludeSymbols, req.IncludeNumbers)
	if err != nil {
		return nil, toStatus("generate", err)
	}
	return map[string]string{"password": pw}, nil
}

func (s *Server) FakeIdentity(context.Context, *structpb.Struct) (any, error) {
	return s.tools.FakeIdentity(), nil
}

func (s *Server) MaskedEmail(context.Context, *structpb.Struct) (any, error) {
	return map[string]string{"email": s.tools.MaskedEmail()}, nil
}

// CheckBreaches runs the simulated lookup for {"email": ...}.
func (s *Server) CheckBreaches(_ context.Context, in *structpb.Struct) (any, error) {
	var req struct {
		Email string `json:"email"`
	}
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	return map[string]any{"breaches": s.tools.CheckBreaches(req.Email)}, nil
}

// FormatJSON re-indents {"input": ...}.
func (s *Server) FormatJSON(_ context.Context, in *structpb.Struct) (any, error) {
	var req struct {
		Input string `json:"input"`
	}
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	out, err := s.tools.FormatJSON(req.Input)
	if err != nil {
		return nil, toStatus("format", err)
	}
	return map[string]string{"output": out}, nil
}

// QRCode builds an image link for {"text": ..., "size": ...}.
func (s *Server) QRCode(_ context.Context, in *structpb.Struct) (any, error) {
	var req struct {
		Text string `json:"text"`
		Size int    `json:"size"`
	}
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	u, err := s.tools.QRCode(req.Text, req.Size)
	if err != nil {
		return nil, toStatus("qr", err)
	}
	return map[string]string{"url": u}, nil
}

// userIDFromCtx prefers the id placed by AuthUnary and otherwise verifies the bearer token itself.
func (s *Server) userIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	if id, ok := SessionUserFromCtx(ctx); ok {
		return id, nil
	}
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return s.auth.Verify(tok)
}

// toStatus maps domain errors to gRPC codes.
func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrInvalidRecord),
		errors.Is(err, errs.ErrInvalidLength),
		errors.Is(err, errs.ErrInvalidJSON),
		errors.Is(err, errs.ErrInvalidSetting),
		errors.Is(err, errs.ErrInvalidEmail),
		errors.Is(err, tools.ErrEmptyText):
		return status.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "no auth")
	case errors.Is(err, vault.ErrNotPersisted):
		return status.Errorf(codes.Unavailable, "%s: %v", op, err)
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
