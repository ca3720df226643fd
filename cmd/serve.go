package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-insight/internal/config"
	"github.com/kozaktomas/face-insight/internal/constants"
	"github.com/kozaktomas/face-insight/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay and the mobile capture page",
	Long: `Start the FaceInsight relay.
The relay accepts {prompt, mimeType, base64Data} on POST /analyze and
forwards it to the model provider with the server-held GEMINI_API_KEY.
It also serves a mobile page at / for taking or choosing a photo.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default from WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().Bool("qr", false, "Print a QR code with the page URL for opening it on a phone")
}

// resolveServeHostPort lets flags override the configured host and port.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
}

// lanAddress returns the address other devices on the network can reach.
// No packet is sent; the UDP dial only selects the outbound interface.
func lanAddress(host string) string {
	if host != "" && host != "0.0.0.0" && host != "::" {
		return host
	}
	conn, err := net.Dial("udp", "192.0.2.1:80")
	if err != nil {
		return "localhost"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

func printQRCode(url string) error {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("generating QR code: %w", err)
	}
	fmt.Println(qr.ToSmallString(false))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	resolveServeHostPort(cmd, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := web.NewServer(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
		printUsage(server.Analyzer().GetUsage())
	}()

	url := fmt.Sprintf("http://%s", net.JoinHostPort(lanAddress(cfg.Web.Host), fmt.Sprint(cfg.Web.Port)))
	fmt.Printf("Starting FaceInsight relay on %s\n", url)
	if mustGetBool(cmd, "qr") {
		if err := printQRCode(url); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
	}
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
