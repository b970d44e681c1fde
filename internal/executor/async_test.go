package executor

import "testing"

func TestNeedsAsync(t *testing.T) {
	cases := []struct {
		name string
		code string
		want bool
	}{
		{"plain assignment", "x = 1\nprint(x)\n", false},
		{"top level await", "result = await fetch_data()\n", true},
		{"bare await", "await asyncio.sleep(0.1)\n", true},
		{"async for", "async for item in source():\n    print(item)\n", true},
		{"async with", "async with session.get(url) as resp:\n    data = await resp.read()\n", true},
		{"await in f-string", "msg = f\"got {await fetch()}\"\n", true},
		{
			"async def body does not count",
			"async def main():\n    await asyncio.sleep(1)\n    return 42\n",
			false,
		},
		{
			"asyncio.run wrapper stays sync",
			"import asyncio\n\nasync def main():\n    await do_work()\n\nasyncio.run(main())\n",
			false,
		},
		{"await inside string literal", "s = 'please await further instructions'\n", false},
		{"await inside comment", "x = 1  # await nothing\n", false},
		{
			"identifier containing await",
			"awaitable = make()\nrun(awaitable)\n",
			false,
		},
		{
			"method named await not keyword",
			"obj.await_result = 3\n",
			false,
		},
		{
			"multiline call with await argument",
			"out = gather(\n    await first(),\n    await second(),\n)\n",
			true,
		},
		{
			"def followed by top level await",
			"def helper():\n    return 1\n\nawait run(helper)\n",
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NeedsAsync(tc.code); got != tc.want {
				t.Fatalf("NeedsAsync(%q) = %v, want %v", tc.code, got, tc.want)
			}
		})
	}
}
