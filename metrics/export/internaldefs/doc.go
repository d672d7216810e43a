// Package internaldefs holds the shared metric name/help definitions used
// by the exporters under metrics/export/. It exists so the Prometheus
// exporter (and any future exporter) agree on exposition names without
// duplicating the tables.
package internaldefs
