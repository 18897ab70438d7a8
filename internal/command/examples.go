// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

// Examples are the quick examples for each subcommand as {command,
// description} pairs. --tldr prints them when no tldr client is installed
// and tools/docgen turns them into tldr pages.
var Examples = map[string][][2]string{
	"list": {
		{"itemctl list", "list every item"},
		{"itemctl list -q lap", "items whose name contains lap"},
		{"itemctl list -q chair --limit 10", "the first ten items whose name contains chair"},
		{"itemctl list -f 'price<100' -s -price", "cheap items, most expensive first"},
		{"itemctl list -a '!category,name::20' -f category=Furniture", "furniture, names cut to 20 characters"},
		{"itemctl list @cheap", "flags from the cheap set in the config file"},
	},
	"get": {
		{"itemctl get 7", "show item 7"},
		{"itemctl get 7 -o json", "item 7 as JSON"},
	},
	"create": {
		{"itemctl create -n 'Desk Lamp' -C Furniture -p 49.50", "add an item"},
	},
	"update": {
		{"itemctl update 7 -p 39.99", "change the price of item 7"},
		{"itemctl update 7 -n 'Desk Lamp XL' --diff", "rename item 7 and show what changed"},
	},
	"delete": {
		{"itemctl delete 7", "remove item 7"},
	},
	"stats": {
		{"itemctl stats", "item count and average price"},
		{"itemctl stats -S s3://bucket/items.json", "stats for a record set in S3"},
	},
	"serve": {
		{"itemctl serve", "serve the API on :3001"},
		{"itemctl serve --addr :8080 --cache-ttl 30s", "another port and a shorter stats cache"},
	},
	"completion": {
		{"source <(itemctl completion bash)", "enable bash completion"},
	},
}
