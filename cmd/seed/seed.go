package main

import (
	"context"
	"fmt"

	"github.com/99minutos/opsboard/internal/core/ports"
)

var seedUsers = []ports.CreateUserInput{
	{Name: "John Doe", Email: "john.doe@example.com", Role: "admin", Status: "active"},
	{Name: "Jane Smith", Email: "jane.smith@example.com", Role: "developer", Status: "active"},
	{Name: "Bob Johnson", Email: "bob.johnson@example.com", Role: "user", Status: "active"},
	{Name: "Alice Williams", Email: "alice.williams@example.com", Role: "developer", Status: "active"},
	{Name: "Charlie Brown", Email: "charlie.brown@example.com", Role: "user", Status: "inactive"},
}

var seedMetrics = []ports.CreateMetricInput{
	{MetricName: "Total Revenue", MetricValue: 42847, MetricType: "revenue", Description: "Monthly revenue increased by 23%"},
	{MetricName: "Active Users", MetricValue: 18500, MetricType: "users", Description: "Real-time active users on platform"},
	{MetricName: "Conversion Rate", MetricValue: 94.3, MetricType: "conversion", Description: "Customer satisfaction rate"},
	{MetricName: "Performance Score", MetricValue: 7392, MetricType: "performance", Description: "Overall system performance metrics"},
	{MetricName: "Monthly Growth", MetricValue: 28.5, MetricType: "growth", Description: "Month-over-month growth percentage"},
	{MetricName: "System Uptime", MetricValue: 99.9, MetricType: "uptime", Description: "System reliability percentage"},
}

// seed inserts the demo data set through the services so every record
// passes the same validation as an API request.
func seed(ctx context.Context, users ports.UserService, analytics ports.AnalyticsService) error {
	for _, in := range seedUsers {
		if _, _, err := users.CreateUser(ctx, in); err != nil {
			return fmt.Errorf("seed user %s: %w", in.Email, err)
		}
	}
	for _, in := range seedMetrics {
		if _, _, err := analytics.CreateMetric(ctx, in); err != nil {
			return fmt.Errorf("seed metric %s: %w", in.MetricName, err)
		}
	}
	return nil
}
