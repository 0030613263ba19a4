package v1

// BasePath is the prefix every version 1 route is mounted under.
const BasePath = "/api/v1"
