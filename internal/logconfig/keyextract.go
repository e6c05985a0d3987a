package logconfig

import "regexp"

// awsLogsKeyPattern matches the AWS log-export S3 key layout
// (AWSLogs/<account>/.../<region>/...), the same layout documented in
// the pack's loki lambda-promtail source.
var awsLogsKeyPattern = regexp.MustCompile(`AWSLogs/(\d{12})/.*?/([a-z]{2}-[a-z]+-\d)/`)

// ExtractAccountFromKey derives an AWS account id from an S3 object
// key, for use as a fallback source for cloud.account.id when no
// CloudWatch/FireLens provenance metadata supplies one. Returns "" if
// the key does not match the AWS log-export layout.
func ExtractAccountFromKey(key string) string {
	m := awsLogsKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractRegionFromKey derives an AWS region from an S3 object key,
// for use as a fallback source for cloud.region.
func ExtractRegionFromKey(key string) string {
	m := awsLogsKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return ""
	}
	return m[2]
}
