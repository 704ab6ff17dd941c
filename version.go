package canopy

// Version is the release of this module.
const Version = "0.3.0"
