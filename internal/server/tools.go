package server

// Tool represents a tool definition exposed over tools/list
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Computer Algebra
		{
			Name:        "cas_evaluate",
			Description: "Evaluate a symbolic expression, optionally substituting variable values with units.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"expr": map[string]interface{}{
						"type":        "string",
						"description": "Expression to evaluate, e.g. 'sin(pi/4) + x**2'",
					},
					"vars": map[string]interface{}{
						"type":        "object",
						"description": "Variable substitutions; each value is a number or {value, unit}",
					},
				},
				"required": []string{"expr"},
			},
		},
		{
			Name:        "cas_diff",
			Description: "Differentiate an expression with respect to a symbol.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"expr": map[string]interface{}{
						"type":        "string",
						"description": "Expression to differentiate",
					},
					"symbol": map[string]interface{}{
						"type":        "string",
						"description": "Symbol to differentiate with respect to",
					},
					"order": map[string]interface{}{
						"type":        "integer",
						"description": "Derivative order. Default 1",
						"default":     1,
					},
				},
				"required": []string{"expr", "symbol"},
			},
		},
		{
			Name:        "cas_integrate",
			Description: "Integrate an expression symbolically, or numerically over the given bounds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"expr": map[string]interface{}{
						"type":        "string",
						"description": "Expression to integrate",
					},
					"symbol": map[string]interface{}{
						"type":        "string",
						"description": "Integration variable",
					},
					"bounds": map[string]interface{}{
						"type":        "array",
						"description": "Optional [lower, upper] bounds for a definite integral",
						"items":       map[string]interface{}{"type": "number"},
					},
					"vars": map[string]interface{}{
						"type":        "object",
						"description": "Variable substitutions applied before integrating",
					},
				},
				"required": []string{"expr", "symbol"},
			},
		},
		{
			Name:        "cas_solve_equation",
			Description: "Solve an equation for a symbol. The equation may use '=' or be an expression set to zero.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"equation": map[string]interface{}{
						"type":        "string",
						"description": "Equation to solve, e.g. 'x**2 - 4 = 0'",
					},
					"symbol": map[string]interface{}{
						"type":        "string",
						"description": "Symbol to solve for",
					},
					"assumptions": map[string]interface{}{
						"type":        "object",
						"description": "Symbol assumptions, e.g. {\"x\": \"positive\"}",
					},
				},
				"required": []string{"equation", "symbol"},
			},
		},
		{
			Name:        "cas_solve_ode",
			Description: "Solve an ordinary differential equation, optionally with initial conditions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"ode": map[string]interface{}{
						"type":        "string",
						"description": "ODE to solve, e.g. \"y'' + y = 0\"",
					},
					"symbol": map[string]interface{}{
						"type":        "string",
						"description": "Independent variable",
					},
					"func": map[string]interface{}{
						"type":        "string",
						"description": "Unknown function name, e.g. 'y'",
					},
					"ics": map[string]interface{}{
						"type":        "object",
						"description": "Initial conditions, e.g. {\"y(0)\": 1, \"y'(0)\": 0}",
					},
				},
				"required": []string{"ode", "symbol", "func"},
			},
		},
		{
			Name:        "cas_propagate_uncertainty",
			Description: "Propagate measurement uncertainty through an expression using first-order error analysis.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"expr": map[string]interface{}{
						"type":        "string",
						"description": "Expression to propagate through",
					},
					"vars": map[string]interface{}{
						"type":        "object",
						"description": "Variables as {name: {value, sigma, unit?}}",
					},
				},
				"required": []string{"expr", "vars"},
			},
		},

		// Units and Constants
		{
			Name:        "units_convert",
			Description: "Convert a physical quantity to another unit.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"quantity": map[string]interface{}{
						"type":        "object",
						"description": "Quantity as {value, unit}",
					},
					"to": map[string]interface{}{
						"type":        "string",
						"description": "Target unit, e.g. 'eV', 'km/h'",
					},
				},
				"required": []string{"quantity", "to"},
			},
		},
		{
			Name:        "constants_get",
			Description: "Look up a physical or astrophysical constant by name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Constant name, e.g. 'c', 'h', 'G', 'M_sun'",
					},
				},
				"required": []string{"name"},
			},
		},

		// Plotting
		{
			Name:        "plot_function_2d",
			Description: "Plot a function of one variable and return a PNG image plus the sampled CSV data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"f": map[string]interface{}{
						"type":        "string",
						"description": "Function of x to plot, e.g. 'sin(x)/x'",
					},
					"x_min": map[string]interface{}{
						"type":        "number",
						"description": "Lower bound of the x range",
					},
					"x_max": map[string]interface{}{
						"type":        "number",
						"description": "Upper bound of the x range",
					},
					"samples": map[string]interface{}{
						"type":        "integer",
						"description": "Number of sample points. Default 1000",
						"default":     1000,
					},
					"title":  map[string]interface{}{"type": "string"},
					"xlabel": map[string]interface{}{"type": "string"},
					"ylabel": map[string]interface{}{"type": "string"},
					"dpi": map[string]interface{}{
						"type":        "integer",
						"description": "Render resolution. Default 100",
						"default":     100,
					},
					"width":  map[string]interface{}{"type": "number"},
					"height": map[string]interface{}{"type": "number"},
				},
				"required": []string{"f", "x_min", "x_max"},
			},
		},
		{
			Name:        "plot_parametric_2d",
			Description: "Plot a parametric curve (x(t), y(t)) and return a PNG image plus CSV data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x_t": map[string]interface{}{
						"type":        "string",
						"description": "x as a function of t",
					},
					"y_t": map[string]interface{}{
						"type":        "string",
						"description": "y as a function of t",
					},
					"t_min": map[string]interface{}{"type": "number"},
					"t_max": map[string]interface{}{"type": "number"},
					"samples": map[string]interface{}{
						"type":    "integer",
						"default": 1000,
					},
					"title":  map[string]interface{}{"type": "string"},
					"xlabel": map[string]interface{}{"type": "string"},
					"ylabel": map[string]interface{}{"type": "string"},
					"dpi":    map[string]interface{}{"type": "integer", "default": 100},
					"width":  map[string]interface{}{"type": "number"},
					"height": map[string]interface{}{"type": "number"},
				},
				"required": []string{"x_t", "y_t", "t_min", "t_max"},
			},
		},
		{
			Name:        "plot_field_2d",
			Description: "Plot a 2D vector field as quiver arrows or streamlines.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"fx": map[string]interface{}{
						"type":        "string",
						"description": "x component of the field as a function of x and y",
					},
					"fy": map[string]interface{}{
						"type":        "string",
						"description": "y component of the field as a function of x and y",
					},
					"x_min": map[string]interface{}{"type": "number"},
					"x_max": map[string]interface{}{"type": "number"},
					"y_min": map[string]interface{}{"type": "number"},
					"y_max": map[string]interface{}{"type": "number"},
					"grid_points": map[string]interface{}{
						"type":        "integer",
						"description": "Grid resolution per axis. Default 20",
						"default":     20,
					},
					"plot_type": map[string]interface{}{
						"type":        "string",
						"description": "'quiver' or 'stream'. Default 'quiver'",
						"default":     "quiver",
					},
					"title":  map[string]interface{}{"type": "string"},
					"xlabel": map[string]interface{}{"type": "string"},
					"ylabel": map[string]interface{}{"type": "string"},
					"dpi":    map[string]interface{}{"type": "integer", "default": 100},
					"width":  map[string]interface{}{"type": "number"},
					"height": map[string]interface{}{"type": "number"},
				},
				"required": []string{"fx", "fy", "x_min", "x_max", "y_min", "y_max"},
			},
		},
		{
			Name:        "plot_phase_portrait",
			Description: "Plot the phase portrait of a 2D dynamical system dx/dt, dy/dt.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dx": map[string]interface{}{
						"type":        "string",
						"description": "dx/dt as a function of x and y",
					},
					"dy": map[string]interface{}{
						"type":        "string",
						"description": "dy/dt as a function of x and y",
					},
					"x_min": map[string]interface{}{"type": "number"},
					"x_max": map[string]interface{}{"type": "number"},
					"y_min": map[string]interface{}{"type": "number"},
					"y_max": map[string]interface{}{"type": "number"},
					"grid_points": map[string]interface{}{
						"type":    "integer",
						"default": 20,
					},
					"title":  map[string]interface{}{"type": "string"},
					"xlabel": map[string]interface{}{"type": "string"},
					"ylabel": map[string]interface{}{"type": "string"},
					"dpi":    map[string]interface{}{"type": "integer", "default": 100},
					"width":  map[string]interface{}{"type": "number"},
					"height": map[string]interface{}{"type": "number"},
				},
				"required": []string{"dx", "dy", "x_min", "x_max", "y_min", "y_max"},
			},
		},
		{
			Name:        "plot_contour_2d",
			Description: "Plot contour lines of a scalar function f(x, y).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"f": map[string]interface{}{
						"type":        "string",
						"description": "Scalar function of x and y",
					},
					"x_min":  map[string]interface{}{"type": "number"},
					"x_max":  map[string]interface{}{"type": "number"},
					"y_min":  map[string]interface{}{"type": "number"},
					"y_max":  map[string]interface{}{"type": "number"},
					"levels": map[string]interface{}{"type": "integer", "default": 20},
					"title":  map[string]interface{}{"type": "string"},
					"xlabel": map[string]interface{}{"type": "string"},
					"ylabel": map[string]interface{}{"type": "string"},
					"dpi":    map[string]interface{}{"type": "integer", "default": 100},
					"width":  map[string]interface{}{"type": "number"},
					"height": map[string]interface{}{"type": "number"},
				},
				"required": []string{"f", "x_min", "x_max", "y_min", "y_max"},
			},
		},
		{
			Name:        "plot_surface_3d",
			Description: "Render a 3D surface plot of f(x, y).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"f": map[string]interface{}{
						"type":        "string",
						"description": "Scalar function of x and y",
					},
					"x_min":   map[string]interface{}{"type": "number"},
					"x_max":   map[string]interface{}{"type": "number"},
					"y_min":   map[string]interface{}{"type": "number"},
					"y_max":   map[string]interface{}{"type": "number"},
					"samples": map[string]interface{}{"type": "integer", "default": 50},
					"title":   map[string]interface{}{"type": "string"},
					"dpi":     map[string]interface{}{"type": "integer", "default": 100},
					"width":   map[string]interface{}{"type": "number"},
					"height":  map[string]interface{}{"type": "number"},
				},
				"required": []string{"f", "x_min", "x_max", "y_min", "y_max"},
			},
		},

		// Acceleration
		{
			Name:        "accel_caps",
			Description: "Report the worker's acceleration capabilities (GPU device, precision modes).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Tensors, Quantum, Statistical Mechanics
		{
			Name:        "tensor_algebra",
			Description: "Compute Christoffel symbols, curvature tensors, and geodesics from a metric.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"metric": map[string]interface{}{
						"type":        "array",
						"description": "Metric tensor components as a nested array of expressions",
						"items": map[string]interface{}{
							"type": "array",
						},
					},
					"coords": map[string]interface{}{
						"type":        "array",
						"description": "Coordinate names, e.g. [\"t\", \"r\", \"theta\", \"phi\"]",
						"items":       map[string]interface{}{"type": "string"},
					},
					"compute": map[string]interface{}{
						"type":        "array",
						"description": "Quantities to compute, e.g. [\"christoffel\", \"ricci\"]",
						"items":       map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"metric", "coords", "compute"},
			},
		},
		{
			Name:        "quantum_ops",
			Description: "Quantum operator utilities: commutators and matrix representations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"operators": map[string]interface{}{
						"type":        "array",
						"description": "Operator expressions; exactly two for a commutator",
						"items":       map[string]interface{}{"type": "string"},
					},
					"task": map[string]interface{}{
						"type":        "string",
						"description": "'commutator' or 'matrix_rep'",
					},
				},
				"required": []string{"operators", "task"},
			},
		},
		{
			Name:        "quantum_solve",
			Description: "Solve standard quantum problems or a custom Hamiltonian for eigenvalues and states.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"problem": map[string]interface{}{
						"type":        "string",
						"description": "'sho', 'particle_in_box' or 'custom'",
					},
					"hamiltonian": map[string]interface{}{
						"type":        "string",
						"description": "Hamiltonian matrix or expression for 'custom' problems",
					},
					"params": map[string]interface{}{
						"type":        "object",
						"description": "Problem parameters, e.g. {\"n_levels\": 5, \"omega\": 1.0}",
					},
				},
				"required": []string{"problem"},
			},
		},
		{
			Name:        "quantum_visualize",
			Description: "Visualize a quantum state as a Bloch sphere or probability density plot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"state": map[string]interface{}{
						"type":        "string",
						"description": "State to visualize, e.g. '|0>' or '(|0>+|1>)/sqrt(2)'",
					},
					"kind": map[string]interface{}{
						"type":        "string",
						"description": "'bloch' or 'prob_density'",
					},
				},
				"required": []string{"state", "kind"},
			},
		},
		{
			Name:        "statmech_partition",
			Description: "Compute a partition function and derived thermodynamic quantities from energy levels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"energy_levels": map[string]interface{}{
						"type":        "array",
						"description": "Energy levels in joules",
						"items":       map[string]interface{}{"type": "number"},
					},
					"temperature": map[string]interface{}{
						"type":        "number",
						"description": "Temperature in kelvin. Default 300",
						"default":     300,
					},
					"degeneracies": map[string]interface{}{
						"type":        "array",
						"description": "Optional level degeneracies, same length as energy_levels",
						"items":       map[string]interface{}{"type": "number"},
					},
				},
				"required": []string{"energy_levels"},
			},
		},

		// Signal Processing
		{
			Name:        "data_fft",
			Description: "Compute the FFT of a signal and return spectrum data plus a rendered plot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"signal_data": map[string]interface{}{
						"type":        "array",
						"description": "Signal samples",
						"items":       map[string]interface{}{"type": "number"},
					},
					"sample_rate": map[string]interface{}{
						"type":        "number",
						"description": "Sample rate in Hz",
					},
					"window": map[string]interface{}{
						"type":        "string",
						"description": "Window function. Default 'hann'",
						"default":     "hann",
					},
				},
				"required": []string{"signal_data", "sample_rate"},
			},
		},
		{
			Name:        "data_filter",
			Description: "Apply a digital filter (lowpass, highpass, bandpass, bandstop) to a signal.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"signal_data": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "number"},
					},
					"sample_rate": map[string]interface{}{"type": "number"},
					"filter_type": map[string]interface{}{
						"type":        "string",
						"description": "'lowpass', 'highpass', 'bandpass' or 'bandstop'",
					},
					"cutoff_freq": map[string]interface{}{
						"type":        "array",
						"description": "Cutoff frequency in Hz; two values for band filters",
						"items":       map[string]interface{}{"type": "number"},
					},
					"order": map[string]interface{}{
						"type":        "integer",
						"description": "Filter order. Default 4",
						"default":     4,
					},
				},
				"required": []string{"signal_data", "sample_rate", "filter_type", "cutoff_freq"},
			},
		},
		{
			Name:        "data_spectrogram",
			Description: "Compute a spectrogram of a signal via the short-time Fourier transform.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"signal_data": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "number"},
					},
					"sample_rate": map[string]interface{}{"type": "number"},
					"window_size": map[string]interface{}{
						"type":    "integer",
						"default": 256,
					},
					"overlap": map[string]interface{}{
						"type":        "number",
						"description": "Window overlap fraction. Default 0.5",
						"default":     0.5,
					},
				},
				"required": []string{"signal_data", "sample_rate"},
			},
		},
		{
			Name:        "data_wavelet",
			Description: "Compute a continuous wavelet transform scalogram of a signal.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"signal_data": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "number"},
					},
					"sample_rate": map[string]interface{}{"type": "number"},
					"wavelet": map[string]interface{}{
						"type":        "string",
						"description": "Mother wavelet. Default 'morlet'",
						"default":     "morlet",
					},
					"scales": map[string]interface{}{
						"type":        "array",
						"description": "Optional explicit scales",
						"items":       map[string]interface{}{"type": "number"},
					},
				},
				"required": []string{"signal_data", "sample_rate"},
			},
		},

		// Data I/O
		{
			Name:        "data_import_hdf5",
			Description: "Import a dataset from an HDF5 file on the worker's filesystem.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the HDF5 file",
					},
					"dataset_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the dataset within the file; omit to list datasets",
					},
					"emit_plots": map[string]interface{}{
						"type":        "boolean",
						"description": "Render overview plots of the imported data. Default true",
						"default":     true,
					},
				},
				"required": []string{"file_path"},
			},
		},
		{
			Name:        "data_import_fits",
			Description: "Import astronomical data from a FITS file on the worker's filesystem.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the FITS file",
					},
					"hdu_index": map[string]interface{}{
						"type":        "integer",
						"description": "HDU to read. Default 0",
						"default":     0,
					},
					"emit_plots": map[string]interface{}{
						"type":    "boolean",
						"default": true,
					},
				},
				"required": []string{"file_path"},
			},
		},
		{
			Name:        "data_import_root",
			Description: "Import particle physics data from a ROOT file tree.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the ROOT file",
					},
					"tree_name": map[string]interface{}{
						"type":        "string",
						"description": "Name of the tree to read",
					},
					"branches": map[string]interface{}{
						"type":        "array",
						"description": "Branches to read; omit for all",
						"items":       map[string]interface{}{"type": "string"},
					},
					"max_entries": map[string]interface{}{
						"type":        "integer",
						"description": "Entry limit. Default 10000",
						"default":     10000,
					},
					"emit_plots": map[string]interface{}{
						"type":    "boolean",
						"default": true,
					},
				},
				"required": []string{"file_path", "tree_name"},
			},
		},
		{
			Name:        "data_export_hdf5",
			Description: "Export datasets to an HDF5 file on the worker's filesystem.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data": map[string]interface{}{
						"type":        "object",
						"description": "Mapping of dataset name to array data",
					},
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Destination HDF5 file path",
					},
					"compression": map[string]interface{}{
						"type":        "string",
						"description": "Compression method. Default 'gzip'",
						"default":     "gzip",
					},
				},
				"required": []string{"data", "file_path"},
			},
		},

		// Local Utilities
		{
			Name:        "plot_style_palette",
			Description: "Generate visually distinct hex colors for multi-series plots. Runs locally; the worker is not consulted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to generate (1-64). Default 1",
						"default":     1,
					},
				},
			},
		},
		{
			Name:        "artifact_thumbnail",
			Description: "Generate a thumbnail PNG for a previously saved plot artifact. Runs locally.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the saved artifact PNG",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Thumbnail width in pixels. Default 320",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// artifactTools lists the worker methods whose results carry rendered
// images that the server persists to disk.
var artifactTools = map[string]bool{
	"plot_function_2d":    true,
	"plot_parametric_2d":  true,
	"plot_field_2d":       true,
	"plot_phase_portrait": true,
	"plot_contour_2d":     true,
	"plot_surface_3d":     true,
	"data_fft":            true,
	"data_filter":         true,
	"data_spectrogram":    true,
	"data_wavelet":        true,
	"quantum_visualize":   true,
	"data_import_hdf5":    true,
	"data_import_fits":    true,
	"data_import_root":    true,
}

// ToolExists reports whether name is in the published catalog.
func ToolExists(name string) bool {
	for _, t := range GetToolDefinitions() {
		if t.Name == name {
			return true
		}
	}
	return false
}

func producesArtifacts(name string) bool {
	return artifactTools[name]
}
