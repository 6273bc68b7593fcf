package analyses

import (
	"context"

	"github.com/google/uuid"

	"github.com/Abhishek-Sahu25/Echo-check/pkg/pagination"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/storage"
)

// System defines the public contract for analysis domain operations.
// Every read and write is scoped to the owning caller.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		owner uuid.UUID,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Analysis], error)

	Find(ctx context.Context, owner, id uuid.UUID) (*Analysis, error)
	Submit(ctx context.Context, owner uuid.UUID, cmd SubmitCommand) (*Analysis, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error

	Report(ctx context.Context, owner, id uuid.UUID) ([]byte, error)
	Spectrogram(ctx context.Context, owner, id uuid.UUID) (*storage.DownloadResult, error)
}
