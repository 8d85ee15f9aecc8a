/*
Package attachment materializes the binaries (PDF, DOC) linked from a
document.

Resolve downloads the remote file in one request with TLS validation
disabled, derives its local name and writes it under the output directory.
The file is written only after the whole body has been received, through
a temp file and rename, so a failed transfer never leaves a partial file.
The resolver does not look at the disk before downloading; skipping known
documents is the crawler's job.
*/
package attachment

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/failure"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/fileutil"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/hashutil"
)

// Resolver is what the crawler and the enrichment matcher need.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (document.AttachmentRef, failure.ClassifiedError)
}

var _ Resolver = (*LocalResolver)(nil)

type LocalResolver struct {
	metadataSink metadata.MetadataSink
	client       access.Doer
	param        ResolveParam
}

func NewLocalResolver(metadataSink metadata.MetadataSink, client access.Doer, param ResolveParam) *LocalResolver {
	if param.HashAlgo == "" {
		param.HashAlgo = hashutil.HashAlgoBLAKE3
	}
	return &LocalResolver{
		metadataSink: metadataSink,
		client:       client,
		param:        param,
	}
}

// Resolve downloads req.RemoteURL and returns a reference to the local copy.
// On failure the returned ref carries the remote URL with status failed.
func (r *LocalResolver) Resolve(ctx context.Context, req Request) (document.AttachmentRef, failure.ClassifiedError) {
	remoteURL := CleanURL(req.RemoteURL)
	ref := document.AttachmentRef{
		RemoteURL: remoteURL,
		Status:    document.AttachmentPending,
	}

	resp, err := r.client.Do(ctx, access.Request{
		Method:   http.MethodGet,
		Path:     remoteURL,
		Insecure: true,
	})
	if err != nil {
		return r.fail(ref, req, classifyDownloadError(err))
	}

	name, nameErr := DeriveName(Request{
		Source:    req.Source,
		RemoteURL: remoteURL,
		KnownID:   req.KnownID,
		IsPDF:     req.IsPDF,
	}, resp.Header())
	if nameErr != nil {
		return r.fail(ref, req, nameErr)
	}
	kind := KindOf(name)
	ref.LocalName = name
	ref.Kind = kind

	folder := Folder(r.param.OutputDir, req.Source, kind)
	if err := fileutil.EnsureDir(folder); err != nil {
		return r.fail(ref, req, &AttachmentError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWrite,
		})
	}

	localPath := filepath.Join(folder, name)
	if err := fileutil.WriteFileAtomic(localPath, resp.Body()); err != nil {
		return r.fail(ref, req, &AttachmentError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWrite,
		})
	}

	hash, hashErr := hashutil.HashBytes(resp.Body(), r.param.HashAlgo)
	if hashErr != nil {
		return r.fail(ref, req, &AttachmentError{
			Message:   hashErr.Error(),
			Retryable: false,
			Cause:     ErrCauseWrite,
		})
	}

	ref.LocalPath = localPath
	ref.Hash = hash
	ref.Status = document.AttachmentDownloaded

	r.metadataSink.RecordArtifact(
		metadata.ArtifactAttachment,
		localPath,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, remoteURL),
			metadata.NewAttr(metadata.AttrSource, string(req.Source)),
			metadata.NewAttr(metadata.AttrBinaryKind, string(kind)),
			metadata.NewAttr(metadata.AttrHash, hash),
		},
	)
	return ref, nil
}

func (r *LocalResolver) fail(
	ref document.AttachmentRef,
	req Request,
	err *AttachmentError,
) (document.AttachmentRef, failure.ClassifiedError) {
	ref.Status = document.AttachmentFailed
	r.metadataSink.RecordError(
		time.Now(),
		"attachment",
		"LocalResolver.Resolve",
		mapAttachmentErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, ref.RemoteURL),
			metadata.NewAttr(metadata.AttrSource, string(req.Source)),
		},
	)
	return ref, err
}

func classifyDownloadError(err failure.ClassifiedError) *AttachmentError {
	if access.IsBadResponse(err) {
		return &AttachmentError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseBadResponse,
		}
	}
	return &AttachmentError{
		Message:   fmt.Sprintf("download: %v", err),
		Retryable: access.IsTransport(err),
		Cause:     ErrCauseDownload,
	}
}
