package internal

// Version of bomdia
const Version = "v0.1.0"
