package billing

// Plan is a subscription tier. Price is in cents.
type Plan struct {
	Name        string
	Price       int64
	UploadLimit int
}

var (
	// Free is the default tier every account starts on.
	Free = Plan{Name: "free", Price: 0, UploadLimit: 2}

	// Pro is the paid tier unlocked by an active subscription.
	Pro = Plan{Name: "pro", Price: 999, UploadLimit: 100}
)
