package domain

import "fmt"

// ContentRef points at one object in a content store.
type ContentRef struct {
	Scheme string
	Bucket string
	Key    string
}

// String renders the reference as scheme://bucket/key.
func (r ContentRef) String() string {
	return fmt.Sprintf("%s://%s/%s", r.Scheme, r.Bucket, r.Key)
}
