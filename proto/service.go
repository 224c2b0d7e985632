// Package proto defines the gRPC service interface for the certification service.
//
// In a full protoc workflow you would generate this with protoc-gen-go-grpc.
// This hand-written version keeps the project self-contained; messages are
// plain structs carried by the JSON codec registered in codec.go.
// filecert.proto documents the same schema.
package proto

import (
	"context"

	"google.golang.org/grpc"
)

// CertificationServer is the server-side interface for the CertificationService.
type CertificationServer interface {
	Certify(context.Context, *CertifyRequest) (*CertifyResponse, error)
	Verify(context.Context, *VerifyRequest) (*VerifyResponse, error)
	GetCertification(context.Context, *GetCertificationRequest) (*GetCertificationResponse, error)
}

// CertificationClient is the client-side interface for the CertificationService.
type CertificationClient interface {
	Certify(ctx context.Context, in *CertifyRequest, opts ...grpc.CallOption) (*CertifyResponse, error)
	Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*VerifyResponse, error)
	GetCertification(ctx context.Context, in *GetCertificationRequest, opts ...grpc.CallOption) (*GetCertificationResponse, error)
}

const serviceName = "filecert.CertificationService"

// ---- server registration ----

// ServiceDesc is the grpc.ServiceDesc for the CertificationService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CertificationServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Certify",
			Handler:    _Certification_Certify_Handler,
		},
		{
			MethodName: "Verify",
			Handler:    _Certification_Verify_Handler,
		},
		{
			MethodName: "GetCertification",
			Handler:    _Certification_GetCertification_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/filecert.proto",
}

// RegisterCertificationServer registers the server implementation with a gRPC server.
func RegisterCertificationServer(s grpc.ServiceRegistrar, srv CertificationServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func _Certification_Certify_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CertifyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CertificationServer).Certify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Certify"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CertificationServer).Certify(ctx, req.(*CertifyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Certification_Verify_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(VerifyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CertificationServer).Verify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Verify"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CertificationServer).Verify(ctx, req.(*VerifyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Certification_GetCertification_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetCertificationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CertificationServer).GetCertification(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetCertification"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CertificationServer).GetCertification(ctx, req.(*GetCertificationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ---- client implementation ----

type certificationClient struct {
	cc grpc.ClientConnInterface
}

// NewCertificationClient creates a new CertificationService gRPC client.
// Every call is sent with the JSON content-subtype.
func NewCertificationClient(cc grpc.ClientConnInterface) CertificationClient {
	return &certificationClient{cc: cc}
}

func (c *certificationClient) Certify(ctx context.Context, in *CertifyRequest, opts ...grpc.CallOption) (*CertifyResponse, error) {
	out := new(CertifyResponse)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/Certify", in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *certificationClient) Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*VerifyResponse, error) {
	out := new(VerifyResponse)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/Verify", in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *certificationClient) GetCertification(ctx context.Context, in *GetCertificationRequest, opts ...grpc.CallOption) (*GetCertificationResponse, error) {
	out := new(GetCertificationResponse)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/GetCertification", in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
