// Package api serves the tenant provisioning REST API.
//
//	@title						Tenant Provisioning API
//	@version					1.0
//	@description				Creates, inspects and removes ERP tenant sites on a shared bench.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	ProvisioningSecret
//	@in							header
//	@name						X-Provisioning-Secret
package api
