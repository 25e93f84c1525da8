package core

// Version is the service version reported in logs and metrics.
const Version = "0.3.0"
