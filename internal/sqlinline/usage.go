package sqlinline

const QSelectUsageToday = `--sql e000d13a-26a0-4863-8d93-0d486a3b47db
select coalesce(sum(used), 0)
from usage_counters
where user_id = $1::uuid
  and feature = $2::text
  and day = current_date;
`

const QSelectUsageMapToday = `--sql 65240266-7880-44fa-864d-aab8c387bf34
select feature, used
from usage_counters
where user_id = $1::uuid
  and day = current_date;
`

const QIncrementUsage = `--sql f886e211-3946-4a15-9f3e-8caca0afc6fb
insert into usage_counters (user_id, feature, day, used)
values ($1::uuid, $2::text, current_date, 1)
on conflict (user_id, feature, day) do update
set used = usage_counters.used + 1;
`
