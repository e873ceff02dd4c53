// internal/workers/scoring/record-result-access/models.go
package recordresultaccess

type AccessKind string

const (
	KindView     AccessKind = "view"
	KindDownload AccessKind = "download"
)

type Input struct {
	UserTestResultID string     `json:"userTestResultId"`
	Kind             AccessKind `json:"kind"`
}

type Output struct {
	UserTestResultID string `json:"userTestResultId"`
	ViewCount        int64  `json:"viewCount"`
	DownloadCount    int64  `json:"downloadCount"`
}
