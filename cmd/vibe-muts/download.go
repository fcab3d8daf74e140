package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-muts/internal/datasource/oncokb"
)

func (c *cli) newDownloadCmd() *cobra.Command {
	var (
		outputDir string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the OncoKB cancer gene list",
		Long: `Download the OncoKB cancer gene list used to classify genes.

The file is stored as cancerGeneList.tsv in ~/.vibe-muts/ and is picked up
automatically when no gene lists are configured.`,
		Example: `  vibe-muts download
  vibe-muts download --output /data/vibe-muts`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = dataDir()
				if outputDir == "" {
					return fmt.Errorf("cannot determine home directory")
				}
			}
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", outputDir, err)
			}

			dest := filepath.Join(outputDir, oncokb.CancerGeneListFileName)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Downloading OncoKB cancer gene list...\n")
			fmt.Fprintf(out, "Destination: %s\n\n", outputDir)

			if err := downloadFile(cmd.Context(), out, oncokb.CancerGeneListURL, dest, force); err != nil {
				return fmt.Errorf("downloading cancer gene list: %w", err)
			}

			cgl, err := oncokb.LoadCancerGeneList(dest)
			if err != nil {
				return err
			}
			sets := cgl.ReferenceSets()
			c.logger.Info("cancer gene list ready",
				zap.String("path", dest),
				zap.Int("genes", len(cgl)),
				zap.Int("oncogenes", len(sets.Oncogenes())),
				zap.Int("tsgs", len(sets.TSGs())))

			if outputDir != dataDir() {
				fmt.Fprintf(out, "\nTo use this list, run:\n  vibe-muts config set genes.oncokb %s\n", dest)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.vibe-muts/)")
	cmd.Flags().BoolVar(&force, "force", false, "Download even if the file already exists")

	return cmd
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(ctx context.Context, out io.Writer, url, destPath string, force bool) error {
	if info, err := os.Stat(destPath); err == nil && !force {
		fmt.Fprintf(out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(out, "  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 5 * time.Minute,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{
		out:       out,
		total:     resp.ContentLength,
		lastPrint: time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(out, "    Done: %s\n", formatSize(pw.downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
