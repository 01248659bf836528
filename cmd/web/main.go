package main

import (
	_ "embed"
	"html/template"
	"net"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tomz197/cannonade/internal/config"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

//go:embed index.html
var pageHTML string

var page = template.Must(template.New("index").Parse(pageHTML))

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "cannonade-web",
	})

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	sshPort := config.GetEnv("SSH_DISPLAY_PORT", "")

	addr := net.JoinHostPort(host, port)
	logger.Info("starting web server", "addr", addr, "sshHost", sshHost)
	if err := http.ListenAndServe(addr, landingHandler(sshHost, sshPort, logger)); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

// sshCommand is what players paste into their terminal.
func sshCommand(host, port string) string {
	cmd := "ssh -t " + host
	if port != "" && port != "22" {
		cmd = "ssh -t -p " + port + " " + host
	}
	return cmd
}

// landingHandler serves the page that tells players how to connect.
func landingHandler(sshHost, sshPort string, logger *log.Logger) http.Handler {
	data := struct{ Command string }{Command: sshCommand(sshHost, sshPort)}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, data); err != nil {
			logger.Error("render landing page", "err", err)
		}
	})
}
