// Package commands defines the catalogctl CLI, a thin shell over the catalog
// query layer.
//
// Commands
//
//   - find genre|author|published-after|in-stock-after  Filtered finds
//   - summary          Title, author and price of every book
//   - by-price         Catalog sorted by price
//   - page             One page of the catalog in default order
//   - update-price     Set the price of the first book with a title
//   - delete           Delete the first book with a title
//   - stats avg-price|top-author|decades  Aggregations
//   - ensure-index     Create an index over document fields
//   - explain          Execution statistics for a filtered find
//
// Every command prints JSON on stdout. The root command opens the database pool
// once and hands the service to subcommands.
package commands
