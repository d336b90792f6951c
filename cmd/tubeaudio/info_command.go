package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tubeaudio/internal/extraction"
	"tubeaudio/internal/fetch"
	"tubeaudio/internal/resolver"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <url>",
		Short: "Show video metadata without downloading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			gateway, _, err := ctx.gateway(cfg, logger)
			if err != nil {
				return err
			}

			meta, err := fetch.New(cfg, gateway, logger).Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, meta.ToMap())
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMetadata(meta))
			return nil
		},
	}
}

func renderMetadata(meta *extraction.Metadata) string {
	rows := [][]string{
		{"ID", meta.ID},
		{"Title", meta.Title},
		{"Uploader", meta.Uploader},
	}
	if d, ok := meta.Duration.Get(); ok {
		rows = append(rows, []string{"Duration", d.Round(time.Second).String()})
	}
	if date, ok := meta.UploadDate.Get(); ok {
		rows = append(rows, []string{"Uploaded", date.Format(time.DateOnly)})
	}
	if views, ok := meta.ViewCount.Get(); ok {
		rows = append(rows, []string{"Views", humanize.Comma(views)})
	}
	if likes, ok := meta.LikeCount.Get(); ok {
		rows = append(rows, []string{"Likes", humanize.Comma(likes)})
	}
	if abr, ok := meta.AudioBitrate.Get(); ok {
		rows = append(rows, []string{"Audio bitrate", strconv.FormatFloat(abr, 'f', 0, 64) + " kbps"})
	}
	if meta.AudioCodec != "" {
		rows = append(rows, []string{"Audio codec", meta.AudioCodec})
	}
	url := meta.WebpageURL
	if url == "" {
		url = resolver.CanonicalURL(resolver.ResourceID(meta.ID))
	}
	rows = append(rows, []string{"URL", url})
	return renderTable([]column{col("Field"), col("Value")}, rows)
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate <url>...",
		Short:       "Check URLs and print their canonical form",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, raw := range args {
				_, canonical, err := resolver.Resolve(raw)
				if err != nil {
					invalid++
					fmt.Fprintf(out, "invalid\t%s\n", raw)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", canonical, raw)
			}
			if invalid > 0 {
				return errRunFailed
			}
			return nil
		},
	}
}
