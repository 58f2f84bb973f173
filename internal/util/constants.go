package util

const TimeFormat = "2006-01-02 15:04:05"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 单位换算
const BytesPerMB = 1024 * 1024

// 候选人标识请求头，候选人身份由上游系统提供
const HeaderCandidateID = "X-Candidate-ID"
