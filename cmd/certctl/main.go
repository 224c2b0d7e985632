// certctl is a command-line client for the filecert gRPC API.
//
//	certctl [-addr host:port] certify <file> [owner]
//	certctl [-addr host:port] verify <file> <sha256>
//	certctl [-addr host:port] get <sha256>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/mtiwari1/filecert/proto"
)

const maxMsgSize = 64 << 20

var errUsage = errors.New("usage: certctl [-addr host:port] certify <file> [owner] | verify <file> <sha256> | get <sha256>")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certctl", flag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:50051", "gRPC server address")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return errUsage
	}

	conn, err := grpc.NewClient(*addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(maxMsgSize), grpc.MaxCallRecvMsgSize(maxMsgSize)),
	)
	if err != nil {
		return fmt.Errorf("dial %s: %w", *addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	return dispatch(ctx, pb.NewCertificationClient(conn), rest, out)
}

func dispatch(ctx context.Context, client pb.CertificationClient, args []string, out io.Writer) error {
	switch args[0] {
	case "certify":
		content, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		req := &pb.CertifyRequest{Content: content, Filename: filepath.Base(args[1])}
		if len(args) > 2 {
			req.Owner = args[2]
		}
		resp, err := client.Certify(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(out, resp.Certification)

	case "verify":
		if len(args) < 3 {
			return errUsage
		}
		content, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		resp, err := client.Verify(ctx, &pb.VerifyRequest{Content: content, ReferenceDigest: args[2]})
		if err != nil {
			return err
		}
		return printJSON(out, resp)

	case "get":
		resp, err := client.GetCertification(ctx, &pb.GetCertificationRequest{Sha256: args[1]})
		if err != nil {
			return err
		}
		return printJSON(out, resp.Certification)

	default:
		return errUsage
	}
}

func printJSON(out io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
