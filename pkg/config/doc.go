// Package config loads the otool process configuration with viper from
// flags, OTOOL_* environment variables, an optional YAML file and defaults.
// Nested keys map to environment variables with dots and dashes replaced by
// underscores, so jenkins.jobs-file is OTOOL_JENKINS_JOBS_FILE.
package config
