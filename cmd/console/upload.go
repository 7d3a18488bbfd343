package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stan-blog/console/internal/api"
)

var (
	uploadSrcID    string
	uploadFileType string
	uploadPublic   bool
	uploadSingle   bool
)

// uploadCmd is the headless rendition of the panel flow: batch-upload the
// files, then reload the scope list and print what the server now reports.
// The printed set comes from the reload, never from the upload response.
var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Batch-upload files to a scoped resource collection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if uploadSrcID == "" || uploadFileType == "" {
			return fmt.Errorf("--src-id and --file-type are required")
		}
		cfg, client, lb, err := bootstrap()
		if err != nil {
			return err
		}
		defer lb.Close()

		uploads := make([]api.Upload, 0, len(args))
		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			uploads = append(uploads, api.Upload{Name: filepath.Base(path), Content: content})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if uploadSingle {
			// One request per file; the first failure stops the run.
			for _, upload := range uploads {
				if err := client.UploadFile(ctx, uploadSrcID, uploadFileType, upload); err != nil {
					return fmt.Errorf("upload %s: %w", upload.Name, err)
				}
			}
		} else if err := client.BatchUploadFiles(ctx, uploadSrcID, uploadFileType, uploads, uploadPublic); err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		records, total, err := client.ListFilesBySource(ctx, uploadSrcID, uploadFileType, 1, cfg.PageSize())
		if err != nil {
			return fmt.Errorf("upload succeeded but reload failed: %w", err)
		}
		fmt.Printf("Uploaded %d file(s); server now reports %d record(s) for (%s, %s):\n",
			len(uploads), total, uploadSrcID, uploadFileType)
		for _, record := range records {
			fmt.Printf("  %d  %s  %s\n", record.ID, record.OriginalFilename, client.ViewURL(record.ViewURL))
		}
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadSrcID, "src-id", "", "Parent source identifier (required)")
	uploadCmd.Flags().StringVar(&uploadFileType, "file-type", "", "Resource type tag, e.g. PLAN_PIC (required)")
	uploadCmd.Flags().BoolVar(&uploadPublic, "public", false, "Mark uploads as publicly visible")
	uploadCmd.Flags().BoolVar(&uploadSingle, "single", false, "Issue one upload request per file instead of a batch")
}

// publishImageCmd uploads one unscoped, publicly visible image (the article
// cover flow) and prints where it can be viewed.
var publishImageCmd = &cobra.Command{
	Use:   "publish-image [file]",
	Short: "Upload a public image and print its view URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, lb, err := bootstrap()
		if err != nil {
			return err
		}
		defer lb.Close()

		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		record, err := client.UploadPublicImage(ctx, api.Upload{
			Name:    filepath.Base(args[0]),
			Content: content,
		})
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		fmt.Printf("Published %s as record %d\n", record.OriginalFilename, record.ID)
		fmt.Println(client.FileViewURL(record.ID))
		return nil
	},
}
