package handlers

// @title Fire Force Invoice API
// @version 1.0
// @description Invoice, backup, and restore API for a fire safety equipment sales office

// @contact.name API Support
// @contact.email support@fireforce-invoice.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name invoices
// @tag.description Invoice management operations

// @tag.name customers
// @tag.description Customer management operations

// @tag.name users
// @tag.description User account operations

// @tag.name settings
// @tag.description Settings and office info operations

// @tag.name backup
// @tag.description Backup, validation, restore, and scheduling operations

// @tag.name auth
// @tag.description Authentication operations
