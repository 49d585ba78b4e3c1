package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/danmuck/conventus/internal/config"
	"github.com/danmuck/conventus/internal/logging"
	"github.com/danmuck/conventus/internal/observability"
	"github.com/danmuck/conventus/internal/protocol"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newDecodeCmd(opts *rootOptions) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode frames into messages, one line per message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			addr := opts.cfg.MetricsAddr
			if cmd.Flags().Changed("metrics-addr") {
				addr = strings.TrimSpace(metricsAddr)
			}
			return runDecode(cmd.Context(), in, cmd.OutOrStdout(), opts.cfg, addr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /health and /metrics on this address while decoding")
	return cmd
}

// runDecode prints every message read from in. With a metrics address the
// metrics router runs alongside the decoder and stops when decoding ends.
func runDecode(ctx context.Context, in io.Reader, out io.Writer, cfg config.Config, metricsAddr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	reader := protocol.NewMessageReader(in, codec, cfg.Limits(), cfg.ReadChunkSize)
	if metricsAddr == "" {
		defer closeOnDone(ctx, in)()
		return decodeMessages(ctx, reader, out)
	}

	log := logging.Logger("framectl")
	srv := &http.Server{
		Addr:              metricsAddr,
		Handler:           observability.NewRouter("framectl"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", metricsAddr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
		defer closeOnDone(gctx, in)()
		return decodeMessages(gctx, reader, out)
	})
	return g.Wait()
}

func decodeMessages(ctx context.Context, reader *protocol.MessageReader, out io.Writer) error {
	log := logging.Logger("framectl")
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := reader.Next()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, io.EOF) {
			log.Info().Int("messages", count).Msg("decode complete")
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode message %d: %w", count+1, err)
		}
		count++
		if _, err := fmt.Fprintln(out, formatMessage(msg)); err != nil {
			return err
		}
	}
}

// closeOnDone closes in, when it can be closed, once ctx is done. A decoder
// blocked in Read then returns instead of waiting for more input.
func closeOnDone(ctx context.Context, in io.Reader) (stop func() bool) {
	c, ok := in.(io.Closer)
	if !ok {
		return func() bool { return false }
	}
	return context.AfterFunc(ctx, func() {
		_ = c.Close()
	})
}

func formatMessage(m protocol.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id=%d type=%d flags=0x%02x", m.ID, m.Type, m.Flags)
	if len(m.Auth) > 0 {
		fmt.Fprintf(&b, " auth=%d", len(m.Auth))
	}
	b.WriteString(" fields=[")
	for i, f := range m.Fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.String())
	}
	b.WriteByte(']')
	return b.String()
}
