package config

const (
	PostsSegment = "posts"
	PostsUrlPath = "/" + PostsSegment
)

const (
	DriverFile   = "file"
	DriverBolt   = "bolt"
	DriverS3     = "s3"
	DriverSQLite = "sqlite"
)
