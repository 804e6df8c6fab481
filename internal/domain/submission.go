package domain

// Fixed record tag schema. Downstream indexers match on the exact names,
// values, and order, so these must not change between releases.
const (
	TagAppName     = "App-Name"
	TagContentType = "Content-Type"
	TagVersion     = "Version"
	TagType        = "Type"
	TagWallet      = "Wallet"
	TagTopic       = "Topic"

	AppName        = "PublicSquare"
	AppVersion     = "1.0.1"
	ContentType    = "text/plain"
	RecordTypePost = "post"
)

// PostTags returns the ordered tag list attached to every published post.
// The order is part of the wire contract.
func PostTags(wallet ProviderTag) []Tag {
	return []Tag{
		{Name: TagAppName, Value: AppName},
		{Name: TagContentType, Value: ContentType},
		{Name: TagVersion, Value: AppVersion},
		{Name: TagType, Value: RecordTypePost},
		{Name: TagWallet, Value: wallet.PlatformLabel()},
	}
}

// SubmissionState tracks one in-flight publish through its sequential steps.
type SubmissionState string

const (
	SubmissionIdle      SubmissionState = "idle"
	SubmissionFunding   SubmissionState = "funding"
	SubmissionSigning   SubmissionState = "signing"
	SubmissionUploading SubmissionState = "uploading"
	SubmissionSucceeded SubmissionState = "succeeded"
	SubmissionFailed    SubmissionState = "failed"
)

// SubmissionRequest is the ephemeral value representing one publish attempt.
// It is owned exclusively by the Publisher for its lifetime.
type SubmissionRequest struct {
	// ID identifies this attempt in diagnostics. It is not the content id.
	ID string

	// Content is the text being published.
	Content string

	// Tags is the ordered tag list attached to the record.
	Tags []Tag

	// State is the current step, or the terminal outcome.
	State SubmissionState

	// PostID is the assigned content id. Set only after a successful upload.
	PostID string
}
