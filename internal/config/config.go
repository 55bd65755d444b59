package config

// Config is the root application configuration.
type Config struct {
	Merge MergeConfig `yaml:"merge"`
	Log   LogConfig   `yaml:"log"`
}

// MergeConfig holds the dictionary merge settings.
type MergeConfig struct {
	StructurePath  string `yaml:"structure_path"  env:"MERGE_STRUCTURE_PATH"`
	DefinitionPath string `yaml:"definition_path" env:"MERGE_DEFINITION_PATH"`
	OutputPath     string `yaml:"output_path"     env:"MERGE_OUTPUT_PATH"`
	ChunkSize      int    `yaml:"chunk_size"      env:"MERGE_CHUNK_SIZE"      env-default:"10000"`
	Title          string `yaml:"title"           env:"MERGE_TITLE"`
	NoArchive      bool   `yaml:"no_archive"      env:"MERGE_NO_ARCHIVE"`
	Normalizer     string `yaml:"normalizer"      env:"MERGE_NORMALIZER"      env-default:"default"`
	Resolver       string `yaml:"resolver"        env:"MERGE_RESOLVER"        env-default:"redirect"`
	LemmaMapPath   string `yaml:"lemma_map_path"  env:"MERGE_LEMMA_MAP_PATH"`
	LoadWorkers    int    `yaml:"load_workers"    env:"MERGE_LOAD_WORKERS"    env-default:"4"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// EmitArchive reports whether the output directory should also be zipped.
// The flag is stored negated because cleanenv re-applies env-default to a
// false value read from YAML.
func (m MergeConfig) EmitArchive() bool { return !m.NoArchive }
