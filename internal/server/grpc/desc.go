package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type method func(s *Server, ctx context.Context, in *structpb.Struct) (any, error)

// methods lists every Dashboard RPC. protected methods need a bearer token.
var methods = []struct {
	name      string
	call      method
	protected bool
}{
	{"SignIn", (*Server).SignIn, false},
	{"SignOut", (*Server).SignOut, true},
	{"ListRecords", (*Server).ListRecords, true},
	{"AddRecord", (*Server).AddRecord, true},
	{"UpdateRecord", (*Server).UpdateRecord, true},
	{"DeleteRecord", (*Server).DeleteRecord, true},
	{"ExportBackup", (*Server).ExportBackup, true},
	{"ClearAll", (*Server).ClearAll, true},
	{"GetSettings", (*Server).GetSettings, true},
	{"UpdateSetting", (*Server).UpdateSetting, true},
	{"GetDashboard", (*Server).GetDashboard, true},
	{"ScorePassword", (*Server).ScorePassword, false},
	{"ScoreRisk", (*Server).ScoreRisk, false},
	{"GeneratePassword", (*Server).GeneratePassword, false},
	{"FakeIdentity", (*Server).FakeIdentity, false},
	{"MaskedEmail", (*Server).MaskedEmail, false},
	{"CheckBreaches", (*Server).CheckBreaches, false},
	{"FormatJSON", (*Server).FormatJSON, false},
	{"QRCode", (*Server).QRCode, false},
}

var (
	serviceDesc = grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*any)(nil),
		Metadata:    "mobicure/v1/dashboard.proto",
	}
	protectedMethods = map[string]bool{}
)

func init() {
	for _, m := range methods {
		serviceDesc.Methods = append(serviceDesc.Methods, grpc.MethodDesc{
			MethodName: m.name,
			Handler:    unaryHandler(FullMethod(m.name), m.call),
		})
		if m.protected {
			protectedMethods[FullMethod(m.name)] = true
		}
	}
}

// FullMethod returns "/mobicure.v1.Dashboard/<name>".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// Protected reports whether fullMethod requires a session token.
func Protected(fullMethod string) bool {
	return protectedMethods[fullMethod]
}

func unaryHandler(full string, call method) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		h := func(ctx context.Context, req any) (any, error) {
			out, err := call(srv.(*Server), ctx, req.(*structpb.Struct))
			if err != nil {
				return nil, err
			}
			st, err := ToStruct(out)
			if err != nil {
				return nil, status.Errorf(codes.Internal, "encode response: %v", err)
			}
			return st, nil
		}
		if ic == nil {
			return h(ctx, in)
		}
		return ic(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: full}, h)
	}
}
