package config

const (
	defaultWorkspaceDir    = "."
	defaultTemplateDir     = "File"
	defaultLogDir          = "logs"
	defaultTablePath       = "Mol.csv"
	defaultPubChemBaseURL  = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	defaultPubChemTimeout  = 30
	defaultObabelBinary    = "obabel"
	defaultCondaBinary     = "conda"
	defaultCondaEnv        = "gcc"
	defaultPythonBinary    = "python3"
	defaultRenameScript    = "replace_resname.py"
	defaultConvertTimeout  = 60
	defaultOptimizeTimeout = 120
	defaultRenameTimeout   = 60
	defaultAcpypeTimeout   = 3600
	defaultForceField      = "MMFF94"
	defaultOptimizeSteps   = 1000
	defaultDielectric      = 78.0
	defaultChargeMethod    = "bcc"
	defaultAtomType        = "gaff2"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			TemplateDir:  defaultTemplateDir,
			LogDir:       defaultLogDir,
			TablePath:    defaultTablePath,
		},
		PubChem: PubChem{
			BaseURL:        defaultPubChemBaseURL,
			TimeoutSeconds: defaultPubChemTimeout,
		},
		Tools: Tools{
			Obabel:          defaultObabelBinary,
			Conda:           defaultCondaBinary,
			CondaEnv:        defaultCondaEnv,
			Python:          defaultPythonBinary,
			RenameScript:    defaultRenameScript,
			ConvertTimeout:  defaultConvertTimeout,
			OptimizeTimeout: defaultOptimizeTimeout,
			RenameTimeout:   defaultRenameTimeout,
			AcpypeTimeout:   defaultAcpypeTimeout,
		},
		Optimize: Optimize{
			ForceField: defaultForceField,
			Steps:      defaultOptimizeSteps,
			Dielectric: defaultDielectric,
		},
		Acpype: Acpype{
			ChargeMethod: defaultChargeMethod,
			AtomType:     defaultAtomType,
			NetCharge:    0,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
