package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yungbote/disclosure-backend/internal/app"
	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/services"
)

func main() {
	var search, status, out string
	flag.StringVar(&search, "search", "", "case-insensitive substring over title, description and docket number")
	flag.StringVar(&status, "status", "", "exact status filter (pending|reviewed|approved|rejected)")
	flag.StringVar(&out, "out", "-", "output file, - for stdout")
	flag.Parse()

	filter := services.ListFilter{Search: strings.TrimSpace(search)}
	if strings.TrimSpace(status) != "" {
		s, ok := types.ParseStatus(status)
		if !ok {
			fmt.Printf("invalid -status %q\n", status)
			os.Exit(2)
		}
		filter.Status = &s
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			application.Log.Error("open output", "path", out, "error", err)
			application.Close()
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	n, err := services.ExportCSV(context.Background(), application.Services.Disclosures, filter, w)
	if err != nil {
		application.Log.Error("export failed", "error", err)
		application.Close()
		os.Exit(1)
	}
	application.Log.Info("export complete", "rows", n, "out", out)
}
