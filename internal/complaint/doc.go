// Package complaint is the business boundary for Tanggap's complaint triage.
// It defines the Service (validation, classification, prioritisation, tracking
// id assignment, lifecycle and notification dispatch), the Store and Classifier
// collaborator interfaces, and the domain models.
package complaint
