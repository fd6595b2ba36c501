package service

// Perspective buckets used for matching user evaluations against media
// coverage. Media sources carry a five-point lean which collapses onto the
// same three-point scale the evaluations use.
const (
	BucketLeft   = "left"
	BucketCenter = "center"
	BucketRight  = "right"
)

// MapPerspectiveBucket collapses a five-point media perspective onto the
// three-point evaluation scale. ok is false for unknown or empty labels,
// in which case the caller drops the record.
func MapPerspectiveBucket(perspective string) (string, bool) {
	switch perspective {
	case "left", "center_left":
		return BucketLeft, true
	case "center":
		return BucketCenter, true
	case "center_right", "right":
		return BucketRight, true
	}
	return "", false
}
