// Package server implements the MCP (Model Context Protocol) server for
// physics computation tools.
//
// This package provides a JSON-RPC 2.0 server that exposes symbolic math,
// unit conversion, plotting, and signal processing capabilities through the
// MCP protocol. Computation is delegated to a long-lived Python worker
// process; the server owns the protocol surface, request routing, and
// artifact persistence.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Methods under notifications/ are never answered, even when the client
// attaches an id.
//
// # Available Tools
//
// The catalog is organized into categories:
//
// Computer Algebra:
//   - cas_evaluate: Evaluate expressions with variable substitution
//   - cas_diff: Differentiate
//   - cas_integrate: Integrate symbolically or numerically
//   - cas_solve_equation: Solve equations
//   - cas_solve_ode: Solve ordinary differential equations
//   - cas_propagate_uncertainty: First-order error propagation
//
// Units and Constants:
//   - units_convert: Convert quantities between units
//   - constants_get: Look up physical constants
//
// Plotting:
//   - plot_function_2d, plot_parametric_2d, plot_field_2d,
//     plot_phase_portrait, plot_contour_2d, plot_surface_3d
//
// Tensors, Quantum, Statistical Mechanics:
//   - tensor_algebra: Christoffel symbols, curvature tensors, geodesics
//   - quantum_ops, quantum_solve, quantum_visualize
//   - statmech_partition: Partition functions and thermodynamics
//
// Signal Processing and Data I/O:
//   - data_fft, data_filter, data_spectrogram, data_wavelet
//   - data_import_hdf5, data_import_fits, data_import_root,
//     data_export_hdf5
//
// Acceleration:
//   - accel_caps: Report GPU capability of the worker
//
// Local Utilities (no worker round trip):
//   - plot_style_palette: Distinct colors for multi-series plots
//   - artifact_thumbnail: Thumbnail a saved plot artifact
//
// # Artifacts
//
// Plot results carry a base64 PNG inline. When an artifact store is
// configured, the server writes the full image, a thumbnail, and a blurred
// preview to disk and annotates the result with their paths before the
// response goes out.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses. Domain
// errors raised by the worker pass through with their original code and
// data; bridge-level failures map onto dedicated codes (-32000 tool
// failure, -32001 worker unavailable, -32002 timeout, -32003 startup
// failure, -32004 cancelled).
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(server.Config{Worker: client, Store: store, Log: log})
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal().Err(err).Msg("server exited")
//	}
package server
