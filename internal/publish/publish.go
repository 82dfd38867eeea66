// Package publish uploads finished runs to Azure Blob Storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent uploads when Options.Workers is unset.
const DefaultWorkers = 4

// Target is where a run is uploaded.
type Target struct {
	// AccountURL is the blob endpoint, e.g. https://<account>.blob.core.windows.net/.
	AccountURL string
	Container  string
	// Prefix is prepended to every blob name. Usually the run name.
	Prefix string
}

// Options tunes Upload. The zero value is ready to use.
type Options struct {
	Workers int

	// Credential overrides azidentity's default credential chain.
	Credential azcore.TokenCredential

	// MaxRetries is handed to the Azure SDK retry policy. Zero keeps the SDK default.
	MaxRetries int32
}

type uploader interface {
	UploadFile(ctx context.Context, containerName string, blobName string, file *os.File, o *azblob.UploadFileOptions) (azblob.UploadFileResponse, error)
}

// newUploader is replaced in tests.
var newUploader = func(accountURL string, opts Options) (uploader, error) {
	cred := opts.Credential
	if cred == nil {
		c, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating Azure credential: %w", err)
		}
		cred = c
	}

	clientOpts := &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Telemetry: policy.TelemetryOptions{ApplicationID: "migbench"},
		},
	}
	if opts.MaxRetries > 0 {
		clientOpts.Retry = policy.RetryOptions{MaxRetries: opts.MaxRetries}
	}
	return azblob.NewClient(accountURL, cred, clientOpts)
}

// Upload sends src to target. A directory is uploaded file by file, keeping
// relative paths as blob names; a single file (typically a run archive) is
// uploaded under its base name. Uploads run concurrently, bounded by
// opts.Workers, and the first failure cancels the rest. It returns the number
// of files uploaded.
func Upload(ctx context.Context, src string, target Target, opts Options) (int, error) {
	if target.AccountURL == "" || target.Container == "" {
		return 0, errors.New("publish: account URL and container are required")
	}

	files, err := collect(src)
	if err != nil {
		return 0, err
	}

	client, err := newUploader(target.AccountURL, opts)
	if err != nil {
		return 0, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var uploaded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		name := BlobName(target.Prefix, f.rel)
		g.Go(func() error {
			if err := uploadOne(gctx, client, target.Container, name, f.path); err != nil {
				return fmt.Errorf("uploading %s: %w", f.rel, err)
			}
			slog.Debug("uploaded blob", "container", target.Container, "blob", name)
			uploaded.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(uploaded.Load()), err
	}
	return int(uploaded.Load()), nil
}

// BlobName joins prefix and a slash-separated relative path.
func BlobName(prefix, rel string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

func uploadOne(ctx context.Context, client uploader, container, name, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := &azblob.UploadFileOptions{}
	if ct := contentType(filePath); ct != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: to.Ptr(ct)}
	}
	_, err = client.UploadFile(ctx, container, name, f, opts)
	return err
}

func contentType(p string) string {
	switch {
	case strings.HasSuffix(p, ".tar.zst"):
		return "application/zstd"
	case strings.HasSuffix(p, ".txt"), strings.HasSuffix(p, ".log"):
		return "text/plain; charset=utf-8"
	}
	return mime.TypeByExtension(filepath.Ext(p))
}

type localFile struct {
	path string
	rel  string
}

func collect(src string) ([]localFile, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	if !info.IsDir() {
		return []localFile{{path: src, rel: filepath.Base(src)}}, nil
	}

	var files []localFile
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		files = append(files, localFile{path: p, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("publish: listing %s: %w", src, err)
	}
	return files, nil
}
