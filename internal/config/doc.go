// Package config loads the server configuration.
//
// # Configuration Sources
//
// Sources are applied in order, each overriding the previous one:
//
//	1. Built-in defaults (Default)
//	2. A .env file in the working directory, loaded into the process environment
//	3. A YAML file (MONEY_CONFIG_FILE, or config.yaml when present)
//	4. Environment variables
//
// # Environment Variables
//
// Variables are namespaced with MONEY_ and follow the section layout:
//
//	MONEY_SERVER_PORT=8000
//	MONEY_UPLOAD_MAX_BYTES=20971520
//	MONEY_EXTRACTION_MODE=auto
//	MONEY_EXCEL_STYLED=true
//
// Provider credentials and the frontend origin are also read from their bare
// names so existing deployments keep working:
//
//	LLAMA_CLOUD_API_KEY, GEMINI_API_KEY, FRONTEND_ORIGIN
package config
