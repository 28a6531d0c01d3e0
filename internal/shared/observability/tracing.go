package observability

import "go.opentelemetry.io/otel"

// Tracer uses the global provider, which is a no-op unless the embedding
// program installs one.
var Tracer = otel.Tracer("pyannotate")
