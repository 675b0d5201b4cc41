package client

// Version is the SDK release version, reported in the User-Agent header of
// every outbound request.
const Version = "0.4.1"

const defaultUserAgent = "parseflow-go/" + Version
