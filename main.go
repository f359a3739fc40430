package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"strings"
	"time"

	"ipscope/config"
	"ipscope/formatter"
	"ipscope/lookups"
	"ipscope/processing"
	"ipscope/server"
	"ipscope/validation"

	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	ip := flag.String("ip", "", "look up a single address, print the report, and exit")
	me := flag.Bool("me", false, "look up your own public address, print the report, and exit")
	saveJSON := flag.Bool("save-json", false, "with -ip/-me, also write a JSON export file")
	saveText := flag.Bool("save-text", false, "with -ip/-me, also write a text report file")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := config.Load(*configPath); err != nil {
		logrus.Fatalf("Could not load configuration: %v", err)
	}
	if err := lookups.InitGeoIP(config.Cfg); err != nil {
		logrus.Fatalf("Could not initialize GeoIP provider: %v", err)
	}

	if *ip != "" || *me {
		runOnce(strings.TrimSpace(*ip), *saveJSON, *saveText)
		return
	}

	server.Start(embeddedTemplates)
}

// runOnce performs a single lookup from the command line and prints the
// plain-text report to stdout.
func runOnce(ip string, saveJSON, saveText bool) {
	if ip != "" {
		if check := validation.Classify(ip); !check.Valid {
			logrus.Fatalf("%q is not a valid IPv4 or IPv6 address", ip)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	raw, err := lookups.LookupIP(ctx, ip)
	if err != nil {
		logrus.Fatalf("Lookup failed: %v", err)
	}
	result, err := processing.ProcessAll(raw)
	if err != nil {
		logrus.Fatalf("Could not process the API response: %v", err)
	}

	fmt.Print(formatter.ReportText(result, time.Now()))

	if saveJSON {
		path, err := formatter.SaveJSON(result, config.Cfg.Export.Dir, "")
		if err != nil {
			logrus.Fatalf("Could not write JSON export: %v", err)
		}
		logrus.WithField("file", path).Info("JSON export written")
	}
	if saveText {
		path, err := formatter.SaveText(result, config.Cfg.Export.Dir, "")
		if err != nil {
			logrus.Fatalf("Could not write text export: %v", err)
		}
		logrus.WithField("file", path).Info("Text export written")
	}
}
