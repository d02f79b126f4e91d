// Package formats provides a streaming parser for Wavefront OBJ meshes.
//
// Parsed meshes are normalized so a single index addresses a complete
// vertex, and can be turned into interleaved vertex and index buffers
// ready for GPU upload.
package formats
